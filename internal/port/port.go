// Package port provides access to the keyboard controller's I/O ports.
//
// The interpretation path only sees the Port interface: a status register
// with a data-ready bit and a data register yielding one byte per read.
//
// Implementations:
//   - Simulated: an in-memory byte stream, used by tests and the terminal host
//   - DevPort: the real i8042 through /dev/port (Linux, requires root)
package port

import (
	"errors"
	"sync"
)

// i8042 register addresses.
const (
	DataPort   = 0x60
	StatusPort = 0x64
)

// StatusOutputFull is the status bit set when a byte is waiting in DataPort.
const StatusOutputFull byte = 0x01

// Port is the narrow hardware capability the driver polls.
type Port interface {
	// ReadStatus returns the controller status register.
	ReadStatus() byte

	// ReadData returns the next byte from the data register.
	ReadData() byte
}

// ErrNotAvailable is returned when the hardware port cannot be opened.
var ErrNotAvailable = errors.New("keyboard controller port not available on this platform")

// Simulated is a Port backed by a byte queue. Feed may be called from any
// goroutine; reads happen on the polling goroutine.
type Simulated struct {
	mu    sync.Mutex
	bytes []byte
	last  byte
	reads uint64
}

// NewSimulated creates an empty simulated port.
func NewSimulated() *Simulated {
	return &Simulated{}
}

// Feed appends bytes as if the keyboard had sent them.
func (s *Simulated) Feed(bs ...byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bytes = append(s.bytes, bs...)
}

// ReadStatus reports output-full while bytes are pending.
func (s *Simulated) ReadStatus() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bytes) > 0 {
		return StatusOutputFull
	}
	return 0
}

// ReadData pops the next byte. Like the hardware latch, reading an empty
// port returns the last byte again.
func (s *Simulated) ReadData() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	if len(s.bytes) == 0 {
		return s.last
	}
	s.last = s.bytes[0]
	s.bytes = s.bytes[1:]
	return s.last
}

// Pending returns the number of unread bytes.
func (s *Simulated) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bytes)
}

// Reads returns how many times ReadData was called.
func (s *Simulated) Reads() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
