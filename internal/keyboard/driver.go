// Package keyboard interprets PS/2 scancodes: it captures codes from the
// controller into a bounded queue, tracks modifier state, resolves each key
// against a layout and drives a text display.
//
// Capture and interpretation run at different cadences on the same owner:
//
//	for {
//		for drv.Poll() {
//		}
//		drv.Interpret()
//	}
//
// A Driver is not safe for concurrent use.
package keyboard

import (
	"context"
	"log/slog"

	"ps2kbd/internal/fifo"
	"ps2kbd/internal/keymap"
	"ps2kbd/internal/metrics"
	"ps2kbd/internal/port"
	"ps2kbd/internal/scancode"
)

// Display is the text output the driver writes to.
type Display interface {
	// WriteChar writes one byte: a character, control code or part of an
	// escape sequence.
	WriteChar(c byte)

	// SwitchConsole makes the zero-based virtual console active.
	SwitchConsole(index uint8)
}

// Options configures a Driver. Zero values select defaults.
type Options struct {
	// Set is the scancode set the hardware emits (default Set1).
	Set scancode.Set

	// QueueCapacity bounds the capture queue (default fifo.DefaultCapacity).
	QueueCapacity int

	// Keymap is the layout (default keymap.USQwerty).
	Keymap *keymap.Keymap

	Logger  *slog.Logger
	Metrics *metrics.KeyboardMetrics
}

// Driver owns the capture queue, modifier state and layout of one keyboard.
type Driver struct {
	port       port.Port
	display    Display
	queue      *fifo.Queue
	translator *scancode.Translator
	keymap     *keymap.Keymap
	mods       Modifiers

	logger  *slog.Logger
	metrics *metrics.KeyboardMetrics
}

// New creates a driver reading from p and writing to d.
func New(p port.Port, d Display, opts Options) *Driver {
	if opts.Keymap == nil {
		opts.Keymap = keymap.USQwerty
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewKeyboardMetrics(metrics.NewRegistry("ps2kbd", ""))
	}

	drv := &Driver{
		port:       p,
		display:    d,
		queue:      fifo.New(opts.QueueCapacity),
		translator: scancode.NewTranslator(opts.Set),
		keymap:     opts.Keymap,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}
	drv.logger.Debug("keyboard driver created",
		"scancode_set", drv.translator.Set().String(),
		"queue_capacity", drv.queue.Cap(),
		"keymap", drv.keymap.Name,
	)
	return drv
}

// Poll reads at most one code from the port into the queue. It returns
// false when the controller had no data. A full queue drops the code.
func (d *Driver) Poll() bool {
	if d.port.ReadStatus()&port.StatusOutputFull == 0 {
		return false
	}

	first := d.port.ReadData()
	code, ok := d.translator.Decode(first, d.port.ReadData)
	if !ok {
		if first == scancode.PausePrefix {
			d.metrics.PauseKeys.Inc()
		} else {
			d.metrics.CodesUnknown.Inc()
		}
		return true
	}
	if err := d.queue.Push(uint16(code)); err != nil {
		d.metrics.CodesDropped.Inc()
		if d.logger.Enabled(context.Background(), slog.LevelDebug) {
			d.logger.Debug("scancode dropped", "code", code.String(), "error", err)
		}
		return true
	}
	d.metrics.CodesCaptured.Inc()
	d.metrics.QueueDepth.Set(int64(d.queue.Len()))
	return true
}

// Interpret drains the queue in arrival order and returns how many codes
// were processed.
func (d *Driver) Interpret() int {
	n := 0
	for {
		v, ok := d.queue.Pop()
		if !ok {
			break
		}
		d.HandleCode(scancode.Code(v))
		n++
	}
	d.metrics.QueueDepth.Set(0)
	if n > 0 {
		d.metrics.DrainBatch.Observe(float64(n))
	}
	return n
}

// HandleCode interprets a single queued code. Unknown codes and keys the
// layout does not map are ignored.
func (d *Driver) HandleCode(code scancode.Code) {
	idx, ok := d.translator.Translate(code)
	if !ok {
		d.metrics.CodesUnknown.Inc()
		return
	}

	v, ok := Resolve(d.keymap, idx, &d.mods)
	if !ok || v.IsUnmapped() {
		d.metrics.KeysUnmapped.Inc()
		return
	}

	d.apply(Dispatch(v, code.Pressed()))
}

// apply performs the side effect of an action.
func (d *Driver) apply(a Action) {
	switch a.Kind {
	case ActionEmitChar:
		for i := 0; i < len(a.Text); i++ {
			d.display.WriteChar(a.Text[i])
		}
		d.metrics.CharsEmitted.Add(uint64(len(a.Text)))
	case ActionSetModifier:
		d.mods.applyAction(a)
	case ActionToggleModifier:
		d.mods.applyAction(a)
		d.metrics.LockState.Set(int64(d.mods.LEDs()))
		d.logger.Debug("lock toggled", "modifier", a.Modifier.String(), "on", d.mods.Get(a.Modifier))
	case ActionSwitchConsole:
		d.display.SwitchConsole(a.Console)
		d.metrics.ConsoleSwitches.Inc()
		d.logger.Info("console switch", "console", a.Console)
	}
}

// Modifiers returns a copy of the current modifier state.
func (d *Driver) Modifiers() Modifiers {
	return d.mods
}

// Keymap returns the active layout.
func (d *Driver) Keymap() *keymap.Keymap {
	return d.keymap
}

// SetKeymap replaces the layout. Modifier state is kept, so keys held
// across the swap release cleanly as long as the new layout maps them.
func (d *Driver) SetKeymap(km *keymap.Keymap) {
	if km == nil {
		return
	}
	d.keymap = km
	d.logger.Info("keymap replaced", "keymap", km.Name, "keys", km.Len())
}

// Pending returns the number of queued, uninterpreted codes.
func (d *Driver) Pending() int {
	return d.queue.Len()
}

// ScancodeSet returns the configured set.
func (d *Driver) ScancodeSet() scancode.Set {
	return d.translator.Set()
}
