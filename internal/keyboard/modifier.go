package keyboard

import "ps2kbd/internal/keymap"

// Modifier identifies one of the nine tracked modifier flags.
type Modifier uint8

const (
	ModNone Modifier = iota
	ModLeftShift
	ModRightShift
	ModLeftControl
	ModRightControl
	ModAlt
	ModAltGr
	ModCapsLock
	ModNumLock
	ModScrollLock
)

var modifierNames = [...]string{
	ModNone:         "none",
	ModLeftShift:    "left_shift",
	ModRightShift:   "right_shift",
	ModLeftControl:  "left_control",
	ModRightControl: "right_control",
	ModAlt:          "alt",
	ModAltGr:        "alt_gr",
	ModCapsLock:     "caps_lock",
	ModNumLock:      "num_lock",
	ModScrollLock:   "scroll_lock",
}

func (m Modifier) String() string {
	if int(m) < len(modifierNames) {
		return modifierNames[m]
	}
	return "unknown"
}

// modifierFor maps a modifier key value to the flag it drives.
func modifierFor(t keymap.Tag) Modifier {
	switch t {
	case keymap.LeftShift:
		return ModLeftShift
	case keymap.RightShift:
		return ModRightShift
	case keymap.LeftControl:
		return ModLeftControl
	case keymap.RightControl:
		return ModRightControl
	case keymap.LeftAlt:
		return ModAlt
	case keymap.RightAlt:
		return ModAltGr
	case keymap.CapsLock:
		return ModCapsLock
	case keymap.NumLock:
		return ModNumLock
	case keymap.ScrollLock:
		return ModScrollLock
	default:
		return ModNone
	}
}

// Modifiers is the modifier key state. The zero value has every flag clear.
type Modifiers struct {
	LeftShift    bool
	RightShift   bool
	LeftControl  bool
	RightControl bool
	Alt          bool
	AltGr        bool
	CapsLock     bool
	NumLock      bool
	ScrollLock   bool
}

// Shift is the effective shift state. Caps lock inverts physical shift.
func (m Modifiers) Shift() bool {
	return (m.LeftShift || m.RightShift) != m.CapsLock
}

// AltAny reports whether either alt key is held.
func (m Modifiers) AltAny() bool {
	return m.Alt || m.AltGr
}

// Control reports whether either control key is held.
func (m Modifiers) Control() bool {
	return m.LeftControl || m.RightControl
}

// Apply updates the state for a modifier key event. Momentary modifiers
// follow pressed; lock keys flip on the press edge only. Other values are
// ignored.
func (m *Modifiers) Apply(v keymap.Value, pressed bool) {
	m.applyAction(Dispatch(v, pressed))
}

// applyAction performs a modifier action and reports whether a was one.
func (m *Modifiers) applyAction(a Action) bool {
	switch a.Kind {
	case ActionSetModifier:
		m.set(a.Modifier, a.Pressed)
	case ActionToggleModifier:
		m.toggle(a.Modifier)
	default:
		return false
	}
	return true
}

// Get returns a single flag.
func (m *Modifiers) Get(mod Modifier) bool {
	if p := m.flag(mod); p != nil {
		return *p
	}
	return false
}

func (m *Modifiers) set(mod Modifier, v bool) {
	if p := m.flag(mod); p != nil {
		*p = v
	}
}

func (m *Modifiers) toggle(mod Modifier) {
	if p := m.flag(mod); p != nil {
		*p = !*p
	}
}

func (m *Modifiers) flag(mod Modifier) *bool {
	switch mod {
	case ModLeftShift:
		return &m.LeftShift
	case ModRightShift:
		return &m.RightShift
	case ModLeftControl:
		return &m.LeftControl
	case ModRightControl:
		return &m.RightControl
	case ModAlt:
		return &m.Alt
	case ModAltGr:
		return &m.AltGr
	case ModCapsLock:
		return &m.CapsLock
	case ModNumLock:
		return &m.NumLock
	case ModScrollLock:
		return &m.ScrollLock
	default:
		return nil
	}
}

// Keyboard LED bits as used by the set-LEDs command (0xED).
const (
	LEDScrollLock byte = 1 << 0
	LEDNumLock    byte = 1 << 1
	LEDCapsLock   byte = 1 << 2
)

// LEDs returns the lock state as an LED bitmask.
func (m Modifiers) LEDs() byte {
	var b byte
	if m.ScrollLock {
		b |= LEDScrollLock
	}
	if m.NumLock {
		b |= LEDNumLock
	}
	if m.CapsLock {
		b |= LEDCapsLock
	}
	return b
}
