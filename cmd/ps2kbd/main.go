// ps2kbd - PS/2 keyboard driver with virtual consoles
//
//	ps2kbd run               Type into virtual consoles from this terminal
//	ps2kbd replay <file>     Feed a recorded scancode script and print the consoles
//	ps2kbd port              Poll the real i8042 through /dev/port (Linux, root)
//	ps2kbd keymap <action>   Validate or dump keymap files
//	ps2kbd config            Print the effective configuration
package main

import (
	"fmt"
	"os"

	"github.com/sahilm/fuzzy"
)

var commands = []string{"run", "replay", "port", "keymap", "config", "help"}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = cmdRun(args)
	case "replay":
		err = cmdReplay(args)
	case "port":
		err = cmdPort(args)
	case "keymap":
		err = cmdKeymap(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		if s := suggest(cmd); s != "" {
			fmt.Fprintf(os.Stderr, "Did you mean %q?\n", s)
		}
		fmt.Fprintln(os.Stderr)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// suggest returns the closest known command, or "".
func suggest(cmd string) string {
	matches := fuzzy.Find(cmd, commands)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Str
}

func usage() {
	fmt.Println(`ps2kbd - PS/2 keyboard scancode driver

USAGE:
    ps2kbd <command> [options]

COMMANDS:
    run                     Drive virtual consoles from this terminal
    replay <file>           Replay a hex scancode script and print the consoles
    port                    Poll the keyboard controller via /dev/port (Linux, root)
    keymap validate <file>  Check a keymap file against the schema
    keymap dump [name]      Print a keymap (builtin or file) as TOML, YAML or JSON
    config                  Print the effective configuration
    help                    Show this help message

COMMON OPTIONS:
    -config <path>          Configuration file (default ~/.config/ps2kbd/config.toml)

In 'run', F1..F12 switch consoles and Ctrl-] quits.

ENVIRONMENT:
    PS2KBD_CONFIG_DIR, PS2KBD_SCANCODE_SET, PS2KBD_QUEUE_CAPACITY, PS2KBD_KEYMAP,
    PS2KBD_LOG_LEVEL, PS2KBD_LOG_FORMAT, PS2KBD_LOG_OUTPUT, PS2KBD_LOG_PATH,
    PS2KBD_METRICS_ADDR`)
}
