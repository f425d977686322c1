package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"

	"ps2kbd/internal/config"
	"ps2kbd/internal/console"
	"ps2kbd/internal/keymap"
	"ps2kbd/internal/port"
	"ps2kbd/internal/replay"
	"ps2kbd/internal/scancode"
	"ps2kbd/internal/screen"
)

// cmdRun hosts the driver in the terminal.
func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("run needs a terminal; use 'ps2kbd replay' for scripts")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	// The terminal belongs to tcell; stderr logging would corrupt it.
	if cfg.Logging.Output == "stderr" || cfg.Logging.Output == "stdout" || cfg.Logging.Output == "both" {
		cfg.Logging.Output = "file"
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	reload, err := s.watchKeymap()
	if err != nil {
		return err
	}
	s.startMetrics()

	cs := console.NewSet(cfg.Console.Count, cfg.Console.Width, cfg.Console.Height, s.component("console"))
	p := port.NewSimulated()
	drv, err := s.newDriver(p, cs)
	if err != nil {
		return err
	}

	scr, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	if err := scr.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer scr.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	host := screen.NewHost(scr, p, drv, cs, screen.HostOptions{
		PollInterval: time.Duration(cfg.Keyboard.PollIntervalMs) * time.Millisecond,
		Reload:       reload,
		Logger:       s.component("screen"),
	})
	s.logger.Info("terminal host started", "keymap", drv.Keymap().Name, "consoles", cs.Len())
	return host.Run(ctx)
}

// cmdReplay feeds a scancode script through the driver.
func cmdReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	configPath := configFlag(fs)
	set := fs.Int("set", 0, "Scancode set of the script (default from config)")
	batch := fs.Int("batch", 16, "Bytes delivered between drains (0 = all at once)")
	all := fs.Bool("all", false, "Print every console, not just the active one")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: ps2kbd replay [options] <file|->")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *set != 0 {
		cfg.Keyboard.ScancodeSet = *set
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	script, err := readScript(fs.Arg(0))
	if err != nil {
		return err
	}
	opts, err := s.driverOptions()
	if err != nil {
		return err
	}

	res := replay.Run(script, replay.Options{
		Driver:   opts,
		Consoles: cfg.Console.Count,
		Width:    cfg.Console.Width,
		Height:   cfg.Console.Height,
		Batch:    *batch,
	})

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	for i := 0; i < res.Consoles.Len(); i++ {
		if !*all && i != res.Consoles.Active() {
			continue
		}
		text := res.Consoles.Console(i).Text()
		if *all && text == "" {
			continue
		}
		fmt.Fprintf(w, "=== tty%d ===\n%s\n", i+1, text)
	}
	fmt.Fprintf(w, "--- %d codes, %d dropped, leds %03b\n",
		res.Processed, s.metrics.CodesDropped.Value(), res.Modifiers.LEDs())
	return nil
}

func readScript(name string) ([]byte, error) {
	var r io.Reader = os.Stdin
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("open script: %w", err)
		}
		defer f.Close()
		r = f
	}
	return replay.Parse(r)
}

// cmdPort polls the real controller and streams output to stdout.
func cmdPort(args []string) error {
	fs := flag.NewFlagSet("port", flag.ExitOnError)
	configPath := configFlag(fs)
	fs.Parse(args)

	if ok, reason := port.DevPortAvailable(); !ok {
		return fmt.Errorf("%w: %s", port.ErrNotAvailable, reason)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	reload, err := s.watchKeymap()
	if err != nil {
		return err
	}
	s.startMetrics()

	dev, err := port.OpenDevPort()
	if err != nil {
		return err
	}
	defer dev.Close()

	out := newStreamDisplay(os.Stdout)
	drv, err := s.newDriver(dev, out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interval := time.Duration(cfg.Keyboard.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("polling keyboard controller", "scancode_set", drv.ScancodeSet().String())
	for {
		select {
		case <-ctx.Done():
			return nil
		case km := <-reload:
			drv.SetKeymap(km)
		case <-ticker.C:
		}
		for drv.Poll() {
		}
		if drv.Interpret() > 0 {
			out.Flush()
		}
	}
}

// streamDisplay writes driver output to a stream, marking console switches.
type streamDisplay struct {
	w      *bufio.Writer
	active uint8
}

func newStreamDisplay(w io.Writer) *streamDisplay {
	return &streamDisplay{w: bufio.NewWriter(w)}
}

func (d *streamDisplay) WriteChar(c byte) {
	d.w.WriteByte(c)
}

func (d *streamDisplay) SwitchConsole(index uint8) {
	if index == d.active {
		return
	}
	d.active = index
	fmt.Fprintf(d.w, "\n[tty%d]\n", index+1)
}

func (d *streamDisplay) Flush() error {
	return d.w.Flush()
}

// cmdKeymap validates or dumps keymaps.
func cmdKeymap(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: ps2kbd keymap validate <file> | dump [-format toml|yaml|json] [name|file]")
	}

	switch args[0] {
	case "validate":
		if len(args) < 2 {
			return errors.New("usage: ps2kbd keymap validate <file>...")
		}
		failed := 0
		for _, path := range args[1:] {
			km, err := keymap.Load(path)
			if err != nil {
				fmt.Printf("FAIL %s: %v\n", path, err)
				failed++
				continue
			}
			fmt.Printf("ok   %s (%s, %d keys)\n", path, km.Name, km.Len())
		}
		if failed > 0 {
			return fmt.Errorf("%d keymap(s) invalid", failed)
		}
		return nil

	case "dump":
		fs := flag.NewFlagSet("keymap dump", flag.ExitOnError)
		format := fs.String("format", "toml", "Output format: toml, yaml or json")
		fs.Parse(args[1:])

		source := "builtin:us"
		if fs.NArg() > 0 {
			source = fs.Arg(0)
			if _, ok := keymap.Builtin(source); ok {
				source = "builtin:" + source
			}
		}
		km, err := keymap.Load(source)
		if err != nil {
			return err
		}
		data, err := km.Encode(keymap.FormatFromPath("x." + *format))
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err

	default:
		return fmt.Errorf("unknown keymap action: %s", args[0])
	}
}

// cmdConfig prints the effective configuration, or writes the defaults.
func cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	configPath := configFlag(fs)
	format := fs.String("format", "toml", "Output format: toml, yaml or json")
	initPath := fs.String("init", "", "Write the default configuration to this path")
	fs.Parse(args)

	if *initPath != "" {
		if _, err := os.Stat(*initPath); err == nil {
			return fmt.Errorf("%s already exists", *initPath)
		}
		if err := config.DefaultConfig().Save(*initPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *initPath)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	data, err := cfg.Encode("." + *format)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, err := scancode.ParseSet(cfg.Keyboard.ScancodeSet); err != nil {
		return err
	}
	path := *configPath
	if path == "" {
		path = config.Path()
	}
	fmt.Fprintf(os.Stderr, "# source: %s\n", filepath.Clean(path))
	return nil
}
