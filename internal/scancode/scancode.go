// Package scancode decodes PS/2 keyboard scancodes into layout-independent
// key indices.
//
// Every code that reaches the interpretation path has the set 1 shape: a
// single make/break byte, or an extended pair packed as 0xE0<<8 | second.
// Bit 0x80 of the low byte marks a break (release). Keyboards running set 2
// with controller translation disabled are normalized to that shape while the
// bytes are captured, see Translator.Decode.
package scancode

import (
	"fmt"
)

// Prefix and flag bytes of the wire protocol.
const (
	ExtendedPrefix byte = 0xE0
	PausePrefix    byte = 0xE1
	BreakPrefix    byte = 0xF0 // set 2 only
	BreakBit       byte = 0x80
)

// Code is a raw scancode as stored in the capture queue.
type Code uint16

// Pack builds an extended code from a prefix byte and its follower.
func Pack(prefix, b byte) Code {
	return Code(prefix)<<8 | Code(b)
}

// Pressed reports whether c is a make code.
func (c Code) Pressed() bool {
	return byte(c)&BreakBit == 0
}

// Extended reports whether c carries the 0xE0 prefix.
func (c Code) Extended() bool {
	return byte(c>>8) == ExtendedPrefix
}

// Make returns the low byte with the break bit cleared.
func (c Code) Make() byte {
	return byte(c) &^ BreakBit
}

func (c Code) String() string {
	if c>>8 != 0 {
		return fmt.Sprintf("%02x %02x", byte(c>>8), byte(c))
	}
	return fmt.Sprintf("%02x", byte(c))
}

// KeyIndex identifies a physical key independently of the scancode set.
// Plain keys use their set 1 make code, extended keys set the high bit.
type KeyIndex uint8

// IndexOf returns the key index for a set 1 make code.
func IndexOf(extended bool, code byte) KeyIndex {
	idx := KeyIndex(code &^ BreakBit)
	if extended {
		idx |= 0x80
	}
	return idx
}

// Well known key indices.
const (
	KeyEscape     KeyIndex = 0x01
	KeyBackspace  KeyIndex = 0x0E
	KeyTab        KeyIndex = 0x0F
	KeyEnter      KeyIndex = 0x1C
	KeyLeftCtrl   KeyIndex = 0x1D
	KeyA          KeyIndex = 0x1E
	KeyLeftShift  KeyIndex = 0x2A
	KeyRightShift KeyIndex = 0x36
	KeyLeftAlt    KeyIndex = 0x38
	KeySpace      KeyIndex = 0x39
	KeyCapsLock   KeyIndex = 0x3A
	KeyF1         KeyIndex = 0x3B
	KeyF10        KeyIndex = 0x44
	KeyNumLock    KeyIndex = 0x45
	KeyScrollLock KeyIndex = 0x46
	KeyF11        KeyIndex = 0x57
	KeyF12        KeyIndex = 0x58

	KeyKeypadEnter KeyIndex = 0x80 | 0x1C
	KeyRightCtrl   KeyIndex = 0x80 | 0x1D
	KeyRightAlt    KeyIndex = 0x80 | 0x38
	KeyUp          KeyIndex = 0x80 | 0x48
	KeyLeft        KeyIndex = 0x80 | 0x4B
	KeyRight       KeyIndex = 0x80 | 0x4D
	KeyDown        KeyIndex = 0x80 | 0x50
	KeyDelete      KeyIndex = 0x80 | 0x53
)
