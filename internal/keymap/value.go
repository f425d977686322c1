// Package keymap holds keyboard layouts: for every key index, six layered
// values selected by the active modifiers.
package keymap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Tag is the variant of a keymap value.
type Tag uint8

const (
	Unmapped Tag = iota

	// Printable characters.
	Ascii
	Lowercase
	AltChar

	// Characters masked to a C0 control code.
	Control
	ControlAlt

	// Toggle modifiers.
	CapsLock
	NumLock
	ScrollLock

	// Momentary modifiers.
	LeftShift
	RightShift
	LeftControl
	RightControl
	LeftAlt
	RightAlt

	// Navigation. Qualified variants move the cursor like the base direction.
	Up
	Down
	Left
	Right
	AltUp
	AltDown
	AltLeft
	AltRight
	ControlUp
	ControlDown
	ControlLeft
	ControlRight

	Delete

	F1
	F2
	F3
	F4
	F5
	F6
	F7
	F8
	F9
	F10
	F11
	F12
)

var tagNames = [...]string{
	Unmapped:     "Unmapped",
	Ascii:        "ascii",
	Lowercase:    "lower",
	AltChar:      "alt",
	Control:      "ctrl",
	ControlAlt:   "ctrlalt",
	CapsLock:     "CapsLock",
	NumLock:      "NumLock",
	ScrollLock:   "ScrollLock",
	LeftShift:    "LeftShift",
	RightShift:   "RightShift",
	LeftControl:  "LeftControl",
	RightControl: "RightControl",
	LeftAlt:      "LeftAlt",
	RightAlt:     "RightAlt",
	Up:           "Up",
	Down:         "Down",
	Left:         "Left",
	Right:        "Right",
	AltUp:        "AltUp",
	AltDown:      "AltDown",
	AltLeft:      "AltLeft",
	AltRight:     "AltRight",
	ControlUp:    "ControlUp",
	ControlDown:  "ControlDown",
	ControlLeft:  "ControlLeft",
	ControlRight: "ControlRight",
	Delete:       "Delete",
	F1:           "F1",
	F2:           "F2",
	F3:           "F3",
	F4:           "F4",
	F5:           "F5",
	F6:           "F6",
	F7:           "F7",
	F8:           "F8",
	F9:           "F9",
	F10:          "F10",
	F11:          "F11",
	F12:          "F12",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("Tag(%d)", uint8(t))
}

// Value is one slot of a layer set. Char is only meaningful for the
// character variants. The zero Value is Unmapped.
type Value struct {
	Tag  Tag
	Char byte
}

// Constructors for character variants.
func Char(c byte) Value    { return Value{Tag: Ascii, Char: c} }
func Lower(c byte) Value   { return Value{Tag: Lowercase, Char: c} }
func Alt(c byte) Value     { return Value{Tag: AltChar, Char: c} }
func Ctrl(c byte) Value    { return Value{Tag: Control, Char: c} }
func CtrlAlt(c byte) Value { return Value{Tag: ControlAlt, Char: c} }

// Key returns a value for a non-character variant.
func Key(t Tag) Value { return Value{Tag: t} }

// IsUnmapped reports whether v produces nothing.
func (v Value) IsUnmapped() bool { return v.Tag == Unmapped }

// IsPrintable reports whether v emits its character unchanged.
func (v Value) IsPrintable() bool {
	return v.Tag == Ascii || v.Tag == Lowercase || v.Tag == AltChar
}

// IsControl reports whether v emits a masked control code.
func (v Value) IsControl() bool {
	return v.Tag == Control || v.Tag == ControlAlt
}

// IsToggle reports whether v is a lock key.
func (v Value) IsToggle() bool {
	return v.Tag >= CapsLock && v.Tag <= ScrollLock
}

// IsMomentary reports whether v is a held modifier.
func (v Value) IsMomentary() bool {
	return v.Tag >= LeftShift && v.Tag <= RightAlt
}

// Direction folds the qualified navigation variants onto Up, Down, Left or
// Right.
func (v Value) Direction() (Tag, bool) {
	if v.Tag < Up || v.Tag > ControlRight {
		return Unmapped, false
	}
	return Up + (v.Tag-Up)%4, true
}

// FunctionKey returns n in 1..12 for F1..F12.
func (v Value) FunctionKey() (int, bool) {
	if v.Tag < F1 || v.Tag > F12 {
		return 0, false
	}
	return int(v.Tag-F1) + 1, true
}

// String renders v in the notation ParseValue accepts.
func (v Value) String() string {
	switch {
	case v.Tag == Unmapped:
		return ""
	case v.IsPrintable() || v.IsControl():
		c := formatChar(v.Char)
		if v.Tag == Ascii {
			return c
		}
		return v.Tag.String() + ":" + c
	default:
		return v.Tag.String()
	}
}

func formatChar(c byte) string {
	if c > ' ' && c < 0x7F && c != ':' {
		return string(rune(c))
	}
	return fmt.Sprintf("0x%02x", c)
}

// ErrInvalidValue is returned by ParseValue for unrecognized notation.
var ErrInvalidValue = errors.New("invalid keymap value")

var tagsByName = func() map[string]Tag {
	m := make(map[string]Tag, len(tagNames))
	for i, name := range tagNames {
		m[strings.ToLower(name)] = Tag(i)
	}
	return m
}()

// ParseValue parses keymap file notation:
//
//	""           Unmapped
//	"a"          Ascii('a')
//	"0x0a"       Ascii(0x0a)
//	"lower:a"    Lowercase('a'), likewise alt:, ctrl:, ctrlalt:
//	"F1", "Left", "CapsLock", ...
//
// Variant names are case-insensitive.
func ParseValue(s string) (Value, error) {
	if s == "" {
		return Value{}, nil
	}
	if kind, char, ok := strings.Cut(s, ":"); ok && char != "" {
		t, found := tagsByName[strings.ToLower(kind)]
		if !found || !(Value{Tag: t}).isCharVariant() {
			return Value{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
		}
		c, err := parseChar(char)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q: %v", ErrInvalidValue, s, err)
		}
		return Value{Tag: t, Char: c}, nil
	}
	if c, err := parseChar(s); err == nil {
		return Char(c), nil
	}
	if t, ok := tagsByName[strings.ToLower(s)]; ok && !(Value{Tag: t}).isCharVariant() {
		return Value{Tag: t}, nil
	}
	return Value{}, fmt.Errorf("%w: %q", ErrInvalidValue, s)
}

func (v Value) isCharVariant() bool {
	return v.IsPrintable() || v.IsControl()
}

func parseChar(s string) (byte, error) {
	if len(s) == 1 {
		return s[0], nil
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 8)
		if err != nil {
			return 0, err
		}
		return byte(n), nil
	}
	return 0, fmt.Errorf("not a single byte: %q", s)
}
