package console

import "log/slog"

// Set is a group of virtual consoles with one active at a time. It
// implements the keyboard driver's display.
type Set struct {
	consoles []*Console
	active   int
	version  uint64
	logger   *slog.Logger
}

// NewSet creates count consoles of the given size.
func NewSet(count, width, height int, logger *slog.Logger) *Set {
	if count <= 0 {
		count = DefaultCount
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Set{consoles: make([]*Console, count), logger: logger}
	for i := range s.consoles {
		s.consoles[i] = NewConsole(width, height)
	}
	return s
}

// WriteChar writes to the active console.
func (s *Set) WriteChar(b byte) {
	s.consoles[s.active].Write(b)
	s.version++
}

// SwitchConsole activates console index. Indices past the last console are
// ignored.
func (s *Set) SwitchConsole(index uint8) {
	if int(index) >= len(s.consoles) {
		s.logger.Debug("console switch ignored", "console", index, "count", len(s.consoles))
		return
	}
	if int(index) == s.active {
		return
	}
	s.active = int(index)
	s.version++
}

// Active returns the active console index.
func (s *Set) Active() int {
	return s.active
}

// Current returns the active console.
func (s *Set) Current() *Console {
	return s.consoles[s.active]
}

// Console returns console i, or nil when out of range.
func (s *Set) Console(i int) *Console {
	if i < 0 || i >= len(s.consoles) {
		return nil
	}
	return s.consoles[i]
}

// Len returns the number of consoles.
func (s *Set) Len() int {
	return len(s.consoles)
}

// Version changes whenever visible state changes, so renderers can skip
// redraws.
func (s *Set) Version() uint64 {
	return s.version
}
