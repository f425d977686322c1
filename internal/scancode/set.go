package scancode

import (
	"errors"
	"fmt"
)

// Set selects the scancode set the keyboard hardware emits.
type Set int

const (
	// Set1 is the XT set, also what an i8042 produces with translation enabled.
	Set1 Set = 1
	// Set2 is the AT set as sent by the keyboard with translation disabled.
	Set2 Set = 2
)

// ErrUnknownSet is returned for scancode sets other than 1 and 2.
var ErrUnknownSet = errors.New("unknown scancode set")

// ParseSet validates a configured set number.
func ParseSet(n int) (Set, error) {
	switch Set(n) {
	case Set1, Set2:
		return Set(n), nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnknownSet, n)
	}
}

func (s Set) String() string {
	switch s {
	case Set1:
		return "set1"
	case Set2:
		return "set2"
	default:
		return fmt.Sprintf("set(%d)", int(s))
	}
}

// Translator turns wire bytes into queued codes and queued codes into key
// indices. It holds no mutable state; the set is fixed at construction.
type Translator struct {
	set Set
}

// NewTranslator returns a translator for the given set. Unknown sets fall
// back to Set1.
func NewTranslator(set Set) *Translator {
	if set != Set2 {
		set = Set1
	}
	return &Translator{set: set}
}

// Set returns the configured scancode set.
func (t *Translator) Set() Set {
	return t.set
}

// Decode assembles one queued code starting at first, pulling prefix
// followers from next. The result always has the set 1 shape. ok is false
// when a set 2 byte has no set 1 equivalent, and for Pause, whose whole
// sequence is consumed without producing a key.
func (t *Translator) Decode(first byte, next func() byte) (code Code, ok bool) {
	if t.set == Set1 {
		switch first {
		case ExtendedPrefix:
			return Pack(ExtendedPrefix, next()), true
		case PausePrefix:
			next()
			next()
			return 0, false
		}
		return Code(first), true
	}

	if first == PausePrefix {
		for range 2 {
			if next() == BreakPrefix {
				next()
			}
		}
		return 0, false
	}
	b := first
	extended := false
	if b == ExtendedPrefix {
		extended = true
		b = next()
	}
	release := false
	if b == BreakPrefix {
		release = true
		b = next()
	}

	m := set2ToSet1[b]
	if m == 0 {
		return 0, false
	}
	if release {
		m |= BreakBit
	}
	if extended {
		return Pack(ExtendedPrefix, m), true
	}
	return Code(m), true
}

// WireLen returns how many bytes the code starting at b[0] occupies on the
// wire. A truncated code reports len(b).
func (t *Translator) WireLen(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	key := func(i int) int {
		if t.set == Set2 && i < len(b) && b[i] == BreakPrefix {
			return i + 2
		}
		return i + 1
	}

	var n int
	switch b[0] {
	case ExtendedPrefix:
		n = key(1)
	case PausePrefix:
		n = key(key(1))
	default:
		n = key(0)
	}
	return min(n, len(b))
}
// Translate maps a queued code to its key index. Controller responses,
// overrun markers and the fake shifts some keyboards wrap around extended
// keys yield ok == false.
func (t *Translator) Translate(c Code) (KeyIndex, bool) {
	hi, lo := byte(c>>8), byte(c)
	switch hi {
	case 0:
		switch lo {
		case 0x00, 0x80, 0xFF, // overrun
			0xFA, 0xFE, 0xEE, 0xFC, // ack, resend, echo, error
			ExtendedPrefix, PausePrefix:
			return 0, false
		}
		return IndexOf(false, lo), true
	case ExtendedPrefix:
		switch lo &^ BreakBit {
		case 0x00, 0x2A, 0x36:
			return 0, false
		}
		return IndexOf(true, lo), true
	default:
		return 0, false
	}
}

// set2ToSet1 is the i8042 translation table restricted to keys present on a
// 102-key board. Zero means no equivalent.
var set2ToSet1 = [256]byte{
	0x76: 0x01, // esc
	0x16: 0x02, 0x1E: 0x03, 0x26: 0x04, 0x25: 0x05, 0x2E: 0x06,
	0x36: 0x07, 0x3D: 0x08, 0x3E: 0x09, 0x46: 0x0A, 0x45: 0x0B,
	0x4E: 0x0C, 0x55: 0x0D, 0x66: 0x0E, 0x0D: 0x0F,
	0x15: 0x10, 0x1D: 0x11, 0x24: 0x12, 0x2D: 0x13, 0x2C: 0x14,
	0x35: 0x15, 0x3C: 0x16, 0x43: 0x17, 0x44: 0x18, 0x4D: 0x19,
	0x54: 0x1A, 0x5B: 0x1B, 0x5A: 0x1C, 0x14: 0x1D,
	0x1C: 0x1E, 0x1B: 0x1F, 0x23: 0x20, 0x2B: 0x21, 0x34: 0x22,
	0x33: 0x23, 0x3B: 0x24, 0x42: 0x25, 0x4B: 0x26, 0x4C: 0x27,
	0x52: 0x28, 0x0E: 0x29, 0x12: 0x2A, 0x5D: 0x2B,
	0x1A: 0x2C, 0x22: 0x2D, 0x21: 0x2E, 0x2A: 0x2F, 0x32: 0x30,
	0x31: 0x31, 0x3A: 0x32, 0x41: 0x33, 0x49: 0x34, 0x4A: 0x35,
	0x59: 0x36, 0x7C: 0x37, 0x11: 0x38, 0x29: 0x39, 0x58: 0x3A,
	0x05: 0x3B, 0x06: 0x3C, 0x04: 0x3D, 0x0C: 0x3E, 0x03: 0x3F,
	0x0B: 0x40, 0x83: 0x41, 0x0A: 0x42, 0x01: 0x43, 0x09: 0x44,
	0x77: 0x45, 0x7E: 0x46,
	0x6C: 0x47, 0x75: 0x48, 0x7D: 0x49, 0x7B: 0x4A, 0x6B: 0x4B,
	0x73: 0x4C, 0x74: 0x4D, 0x79: 0x4E, 0x69: 0x4F, 0x72: 0x50,
	0x7A: 0x51, 0x70: 0x52, 0x71: 0x53,
	0x61: 0x56, 0x78: 0x57, 0x07: 0x58,
}

// set1ToSet2 inverts set2ToSet1.
var set1ToSet2 = func() (t [128]byte) {
	for s2, s1 := range set2ToSet1 {
		if s1 != 0 {
			t[s1] = byte(s2)
		}
	}
	return t
}()

// Encode returns the wire bytes a keyboard using this set sends for a
// set 1 shaped code. ok is false when the key has no equivalent.
func (t *Translator) Encode(c Code) (wire []byte, ok bool) {
	if t.set == Set1 {
		if c.Extended() {
			return []byte{ExtendedPrefix, byte(c)}, true
		}
		return []byte{byte(c)}, true
	}

	m := set1ToSet2[c.Make()]
	if m == 0 {
		return nil, false
	}
	if c.Extended() {
		wire = append(wire, ExtendedPrefix)
	}
	if !c.Pressed() {
		wire = append(wire, BreakPrefix)
	}
	return append(wire, m), true
}
