package keymap

import "ps2kbd/internal/scancode"

// Layer names one of the six slots of a LayerSet.
type Layer uint8

const (
	LayerPlain Layer = iota
	LayerShift
	LayerControl
	LayerAlt
	LayerAltGr
	LayerAltShift
)

var layerNames = [...]string{"plain", "shift", "control", "alt", "altgr", "alt_shift"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "unknown"
}

// LayerSet is the six values one physical key can produce.
type LayerSet struct {
	Plain    Value
	Shift    Value
	Control  Value
	Alt      Value
	AltGr    Value
	AltShift Value
}

// Get returns the value in slot l.
func (s *LayerSet) Get(l Layer) Value {
	switch l {
	case LayerShift:
		return s.Shift
	case LayerControl:
		return s.Control
	case LayerAlt:
		return s.Alt
	case LayerAltGr:
		return s.AltGr
	case LayerAltShift:
		return s.AltShift
	default:
		return s.Plain
	}
}

// set stores v in slot l.
func (s *LayerSet) set(l Layer, v Value) {
	switch l {
	case LayerShift:
		s.Shift = v
	case LayerControl:
		s.Control = v
	case LayerAlt:
		s.Alt = v
	case LayerAltGr:
		s.AltGr = v
	case LayerAltShift:
		s.AltShift = v
	default:
		s.Plain = v
	}
}

// Keymap is a layout: an optional LayerSet per key index. A Keymap is not
// modified once handed to a driver.
type Keymap struct {
	Name string
	keys [256]*LayerSet
}

// New returns an empty layout.
func New(name string) *Keymap {
	return &Keymap{Name: name}
}

// Lookup returns the layer set for idx, or false if the key has no entry.
func (k *Keymap) Lookup(idx scancode.KeyIndex) (*LayerSet, bool) {
	s := k.keys[idx]
	return s, s != nil
}

// Set installs the layer set for idx. Passing nil removes the entry.
func (k *Keymap) Set(idx scancode.KeyIndex, s *LayerSet) {
	k.keys[idx] = s
}

// Len returns the number of keys with an entry.
func (k *Keymap) Len() int {
	n := 0
	for _, s := range k.keys {
		if s != nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy under a new name.
func (k *Keymap) Clone(name string) *Keymap {
	c := New(name)
	for i, s := range k.keys {
		if s != nil {
			cp := *s
			c.keys[i] = &cp
		}
	}
	return c
}

// Each calls fn for every key with an entry, in index order.
func (k *Keymap) Each(fn func(scancode.KeyIndex, *LayerSet)) {
	for i, s := range k.keys {
		if s != nil {
			fn(scancode.KeyIndex(i), s)
		}
	}
}
