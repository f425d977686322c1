// scancode-gen turns text into a scancode script for 'ps2kbd replay', so
// driver behavior can be exercised without typing on real hardware.
//
// Usage:
//
//	go run ./tools/scancode-gen -text "hello, world" -o hello.txt
//	go run ./tools/scancode-gen -set 2 < notes.txt > notes.set2.txt
//	go run ./tools/scancode-gen -text "abc" -keys "F2,Left,Delete"
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"

	"ps2kbd/internal/scancode"
	"ps2kbd/internal/screen"
)

var namedKeys = map[string]tcell.Key{
	"enter":  tcell.KeyEnter,
	"tab":    tcell.KeyTab,
	"bs":     tcell.KeyBackspace2,
	"esc":    tcell.KeyEscape,
	"up":     tcell.KeyUp,
	"down":   tcell.KeyDown,
	"left":   tcell.KeyLeft,
	"right":  tcell.KeyRight,
	"delete": tcell.KeyDelete,
	"f1":     tcell.KeyF1,
	"f2":     tcell.KeyF2,
	"f3":     tcell.KeyF3,
	"f4":     tcell.KeyF4,
	"f5":     tcell.KeyF5,
	"f6":     tcell.KeyF6,
	"f7":     tcell.KeyF7,
	"f8":     tcell.KeyF8,
	"f9":     tcell.KeyF9,
	"f10":    tcell.KeyF10,
	"f11":    tcell.KeyF11,
	"f12":    tcell.KeyF12,
}

func main() {
	text := flag.String("text", "", "Text to type (default: read stdin)")
	keys := flag.String("keys", "", "Comma-separated named keys appended after the text (e.g. F2,Left)")
	set := flag.Int("set", 1, "Scancode set to emit: 1 or 2")
	output := flag.String("o", "", "Output file (default: stdout)")
	flag.Parse()

	if err := run(*text, *keys, *set, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(text, keys string, set int, output string) error {
	s, err := scancode.ParseSet(set)
	if err != nil {
		return err
	}
	named, err := parseKeys(keys)
	if err != nil {
		return err
	}

	if text == "" && keys == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	var out io.Writer = os.Stdout
	var f *os.File
	if output != "" {
		f, err = os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		out = f
	}

	skipped, err := generate(out, s, text, named)
	if f != nil {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d characters with no US key\n", skipped)
	}
	return nil
}

type namedKey struct {
	name string
	key  tcell.Key
}

// parseKeys resolves a comma-separated list of key names.
func parseKeys(list string) ([]namedKey, error) {
	if list == "" {
		return nil, nil
	}
	var out []namedKey
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		k, ok := namedKeys[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown key: %s", name)
		}
		out = append(out, namedKey{name: name, key: k})
	}
	return out, nil
}

// generate writes the script for text followed by keys and returns how many
// characters had no US key.
func generate(out io.Writer, s scancode.Set, text string, keys []namedKey) (int, error) {
	w := bufio.NewWriter(out)
	g := &generator{tr: scancode.NewTranslator(s), w: w}
	fmt.Fprintf(w, "# generated by scancode-gen, %s\n", s)
	for _, r := range text {
		switch r {
		case '\n':
			g.key(tcell.KeyEnter, 0, "enter")
		case '\t':
			g.key(tcell.KeyTab, 0, "tab")
		default:
			g.key(tcell.KeyRune, r, fmt.Sprintf("%q", r))
		}
	}
	for _, k := range keys {
		g.key(k.key, 0, k.name)
	}
	return g.skipped, w.Flush()
}

type generator struct {
	tr      *scancode.Translator
	w       io.Writer
	skipped int
}

// key writes one line: the wire bytes of a key event and a comment naming
// it.
func (g *generator) key(k tcell.Key, r rune, label string) {
	set1 := screen.Scancodes(k, r, 0)
	if set1 == nil {
		g.skipped++
		return
	}

	var fields []string
	for i := 0; i < len(set1); i++ {
		c := scancode.Code(set1[i])
		if set1[i] == scancode.ExtendedPrefix && i+1 < len(set1) {
			i++
			c = scancode.Pack(scancode.ExtendedPrefix, set1[i])
		}
		wire, ok := g.tr.Encode(c)
		if !ok {
			g.skipped++
			return
		}
		for _, b := range wire {
			fields = append(fields, fmt.Sprintf("%02x", b))
		}
	}
	fmt.Fprintf(g.w, "%-36s # %s\n", strings.Join(fields, " "), label)
}
