// Package fifo provides the bounded queue between scancode capture and
// interpretation.
//
// The queue never grows and never blocks: a push into a full queue fails and
// the caller drops the item. It is owned by a single goroutine.
package fifo

import "errors"

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 128

// ErrFull is returned by Push when the queue holds Cap items.
var ErrFull = errors.New("fifo: queue full")

// Queue is a fixed-size ring of 16-bit codes.
type Queue struct {
	buf  []uint16
	head int // next pop
	size int
}

// New creates a queue holding at most capacity items.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{buf: make([]uint16, capacity)}
}

// Push appends v. Items already queued are never evicted.
func (q *Queue) Push(v uint16) error {
	if q.size == len(q.buf) {
		return ErrFull
	}
	q.buf[(q.head+q.size)%len(q.buf)] = v
	q.size++
	return nil
}

// Pop removes the oldest item.
func (q *Queue) Pop() (uint16, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// Len returns the number of queued items.
func (q *Queue) Len() int { return q.size }

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return len(q.buf) }
