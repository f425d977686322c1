package screen

import (
	"context"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/sync/errgroup"

	"ps2kbd/internal/console"
	"ps2kbd/internal/keyboard"
	"ps2kbd/internal/keymap"
	"ps2kbd/internal/port"
)

// QuitKey ends the host loop. It is never forwarded to the keyboard.
const QuitKey = tcell.KeyCtrlRightSq

// HostOptions configures a Host.
type HostOptions struct {
	// PollInterval is how often the driver is polled when no host event
	// arrives (default 10ms).
	PollInterval time.Duration

	// Reload delivers replacement layouts, swapped in between drains.
	Reload <-chan *keymap.Keymap

	Logger *slog.Logger
}

// Host runs a driver against a simulated port fed from terminal input.
type Host struct {
	screen   tcell.Screen
	port     *port.Simulated
	driver   *keyboard.Driver
	consoles *console.Set
	view     *View

	pollInterval time.Duration
	reload       <-chan *keymap.Keymap
	logger       *slog.Logger
}

// NewHost wires a screen, the port the driver reads and the consoles it
// writes to.
func NewHost(s tcell.Screen, p *port.Simulated, drv *keyboard.Driver, cs *console.Set, opts HostOptions) *Host {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 10 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Host{
		screen:       s,
		port:         p,
		driver:       drv,
		consoles:     cs,
		view:         NewView(s, cs),
		pollInterval: opts.PollInterval,
		reload:       opts.Reload,
		logger:       opts.Logger,
	}
}

// Run processes terminal events until the quit key, a nil event from a
// finalized screen, or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 16)
	stop := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case <-stop:
				return nil
			default:
			}
			select {
			case <-stop:
				return nil
			case events <- ev:
			}
		}
	})
	g.Go(func() error {
		defer func() {
			close(stop)
			// Wake the poller if it is blocked in PollEvent.
			h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		}()
		return h.loop(ctx, events)
	})
	return g.Wait()
}

func (h *Host) loop(ctx context.Context, events <-chan tcell.Event) error {
	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	h.view.Draw(h.status())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !h.HandleEvent(ev) {
				return nil
			}
		case km := <-h.reload:
			h.driver.SetKeymap(km)
		case <-ticker.C:
		}
		h.Pump()
	}
}

// HandleEvent applies one terminal event. It returns false when the host
// should stop.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return h.HandleKey(ev.Key(), ev.Rune(), ev.Modifiers())
	case *tcell.EventResize:
		h.screen.Sync()
		h.view.Draw(h.status())
	}
	return true
}

// HandleKey feeds the scancodes for a host key into the port.
func (h *Host) HandleKey(key tcell.Key, r rune, mod tcell.ModMask) bool {
	if key == QuitKey {
		return false
	}
	codes := Scancodes(key, r, mod)
	if codes == nil {
		h.logger.Debug("host key has no scancode", "key", key, "rune", r)
		return true
	}
	h.port.Feed(codes...)
	return true
}

// Pump captures everything pending on the port, interprets it and redraws
// if anything visible changed.
func (h *Host) Pump() {
	for h.driver.Poll() {
	}
	h.driver.Interpret()
	h.view.Refresh(h.status())
}

func (h *Host) status() string {
	return StatusLine(h.consoles.Active(), h.driver.Modifiers(), h.driver.Keymap().Name)
}
