package keyboard

import (
	"ps2kbd/internal/keymap"
	"ps2kbd/internal/scancode"
)

// SelectLayer picks the layer for the current modifiers. Control wins over
// everything, then alt combined with shift, then left alt, alt-gr and shift.
func SelectLayer(m *Modifiers) keymap.Layer {
	switch {
	case m.Control():
		return keymap.LayerControl
	case m.AltAny() && m.Shift():
		return keymap.LayerAltShift
	case m.Alt:
		return keymap.LayerAlt
	case m.AltGr:
		return keymap.LayerAltGr
	case m.Shift():
		return keymap.LayerShift
	default:
		return keymap.LayerPlain
	}
}

// Resolve looks up the value for idx under m. It returns false when the
// layout has no entry for the key; an entry whose selected slot is Unmapped
// is returned as found.
func Resolve(km *keymap.Keymap, idx scancode.KeyIndex, m *Modifiers) (keymap.Value, bool) {
	set, ok := km.Lookup(idx)
	if !ok {
		return keymap.Value{}, false
	}
	return set.Get(SelectLayer(m)), true
}
