package screen

import (
	"github.com/gdamore/tcell/v2"

	"ps2kbd/internal/keymap"
	"ps2kbd/internal/scancode"
)

// Make codes of the modifiers wrapped around a synthesized key.
const (
	makeLeftShift = 0x2A
	makeLeftCtrl  = 0x1D
	makeLeftAlt   = 0x38
)

type physicalKey struct {
	code  byte
	shift bool
}

// runeKeys maps host characters to the US key that types them.
var runeKeys = buildRuneKeys(keymap.USQwerty)

func buildRuneKeys(km *keymap.Keymap) map[rune]physicalKey {
	keys := make(map[rune]physicalKey)
	add := func(v keymap.Value, code byte, shift bool) {
		if v.Tag != keymap.Ascii && v.Tag != keymap.Lowercase {
			return
		}
		if _, ok := keys[rune(v.Char)]; !ok {
			keys[rune(v.Char)] = physicalKey{code: code, shift: shift}
		}
	}
	km.Each(func(idx scancode.KeyIndex, s *keymap.LayerSet) {
		if idx&0x80 == 0 {
			add(s.Plain, byte(idx), false)
		}
	})
	km.Each(func(idx scancode.KeyIndex, s *keymap.LayerSet) {
		if idx&0x80 == 0 {
			add(s.Shift, byte(idx), true)
		}
	})
	return keys
}

// specialKeys holds the press and release bytes of named host keys.
var specialKeys = map[tcell.Key][]byte{
	tcell.KeyEnter:      tap(0x1C),
	tcell.KeyTab:        tap(0x0F),
	tcell.KeyBackspace:  tap(0x0E),
	tcell.KeyBackspace2: tap(0x0E),
	tcell.KeyEscape:     tap(0x01),
	tcell.KeyUp:         tapExtended(0x48),
	tcell.KeyDown:       tapExtended(0x50),
	tcell.KeyLeft:       tapExtended(0x4B),
	tcell.KeyRight:      tapExtended(0x4D),
	tcell.KeyDelete:     tapExtended(0x53),
	tcell.KeyF1:         tap(0x3B),
	tcell.KeyF2:         tap(0x3C),
	tcell.KeyF3:         tap(0x3D),
	tcell.KeyF4:         tap(0x3E),
	tcell.KeyF5:         tap(0x3F),
	tcell.KeyF6:         tap(0x40),
	tcell.KeyF7:         tap(0x41),
	tcell.KeyF8:         tap(0x42),
	tcell.KeyF9:         tap(0x43),
	tcell.KeyF10:        tap(0x44),
	tcell.KeyF11:        tap(0x57),
	tcell.KeyF12:        tap(0x58),
}

func tap(code byte) []byte {
	return []byte{code, code | scancode.BreakBit}
}

func tapExtended(code byte) []byte {
	return []byte{scancode.ExtendedPrefix, code, scancode.ExtendedPrefix, code | scancode.BreakBit}
}

// wrap surrounds body with the press and release of a modifier.
func wrap(code byte, body []byte) []byte {
	out := make([]byte, 0, len(body)+2)
	out = append(out, code)
	out = append(out, body...)
	return append(out, code|scancode.BreakBit)
}

// Scancodes returns the set 1 bytes a PS/2 keyboard would send for a host
// key event, or nil when the key has no equivalent.
func Scancodes(key tcell.Key, r rune, mod tcell.ModMask) []byte {
	shift := mod&tcell.ModShift != 0
	ctrl := mod&tcell.ModCtrl != 0

	var body []byte
	if seq, ok := specialKeys[key]; ok {
		body = seq
	} else if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		k := runeKeys[rune('a'+int(key-tcell.KeyCtrlA))]
		body = tap(k.code)
		ctrl, shift = true, false
	} else if key == tcell.KeyRune {
		k, ok := runeKeys[r]
		if !ok {
			return nil
		}
		body = tap(k.code)
		shift = k.shift
	} else {
		return nil
	}

	if shift {
		body = wrap(makeLeftShift, body)
	}
	if mod&tcell.ModAlt != 0 {
		body = wrap(makeLeftAlt, body)
	}
	if ctrl {
		body = wrap(makeLeftCtrl, body)
	}
	return body
}
