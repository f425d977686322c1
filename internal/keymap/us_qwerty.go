package keymap

import "ps2kbd/internal/scancode"

// USQwerty is the default US layout, indexed by set 1 key index.
var USQwerty = buildUSQwerty()

func letter(c byte) *LayerSet {
	upper := c - 'a' + 'A'
	return &LayerSet{
		Plain:    Lower(c),
		Shift:    Char(upper),
		Control:  Ctrl(upper),
		Alt:      Alt(c),
		AltGr:    Alt(c),
		AltShift: Alt(upper),
	}
}

func symbol(plain, shifted byte, ctrl Value) *LayerSet {
	return &LayerSet{
		Plain:    Char(plain),
		Shift:    Char(shifted),
		Control:  ctrl,
		Alt:      Alt(plain),
		AltGr:    Alt(plain),
		AltShift: Alt(shifted),
	}
}

func same(v Value) *LayerSet {
	return &LayerSet{Plain: v, Shift: v, Control: v, Alt: v, AltGr: v, AltShift: v}
}

func nav(base, alt, ctrl Tag) *LayerSet {
	return &LayerSet{
		Plain:    Key(base),
		Shift:    Key(base),
		Control:  Key(ctrl),
		Alt:      Key(alt),
		AltGr:    Key(alt),
		AltShift: Key(alt),
	}
}

func keypad(c byte) *LayerSet {
	return &LayerSet{
		Plain:    Char(c),
		Shift:    Char(c),
		Alt:      Alt(c),
		AltGr:    Alt(c),
		AltShift: Alt(c),
	}
}

func buildUSQwerty() *Keymap {
	k := New("us")
	set := func(idx scancode.KeyIndex, s *LayerSet) { k.Set(idx, s) }

	set(0x01, same(Char(0x1B)))
	digits := "1234567890"
	shifted := "!@#$%^&*()"
	for i := 0; i < len(digits); i++ {
		var ctrl Value
		switch digits[i] {
		case '2':
			ctrl = Ctrl('@')
		case '6':
			ctrl = Ctrl('^')
		}
		set(scancode.KeyIndex(0x02+i), symbol(digits[i], shifted[i], ctrl))
	}
	set(0x0C, symbol('-', '_', Ctrl('_')))
	set(0x0D, symbol('=', '+', Value{}))
	set(0x0E, same(Char('\b')))
	set(0x0F, same(Char('\t')))

	rows := []struct {
		start   scancode.KeyIndex
		letters string
	}{
		{0x10, "qwertyuiop"},
		{0x1E, "asdfghjkl"},
		{0x2C, "zxcvbnm"},
	}
	for _, row := range rows {
		for i := 0; i < len(row.letters); i++ {
			set(row.start+scancode.KeyIndex(i), letter(row.letters[i]))
		}
	}

	set(0x1A, symbol('[', '{', Ctrl('[')))
	set(0x1B, symbol(']', '}', Ctrl(']')))
	set(0x1C, same(Char('\n')))
	set(0x1D, same(Key(LeftControl)))
	set(0x27, symbol(';', ':', Value{}))
	set(0x28, symbol('\'', '"', Value{}))
	set(0x29, symbol('`', '~', Value{}))
	set(0x2A, same(Key(LeftShift)))
	set(0x2B, symbol('\\', '|', Ctrl('\\')))
	set(0x33, symbol(',', '<', Value{}))
	set(0x34, symbol('.', '>', Value{}))
	set(0x35, symbol('/', '?', Value{}))
	set(0x36, same(Key(RightShift)))
	set(0x37, keypad('*'))
	set(0x38, same(Key(LeftAlt)))
	set(0x39, symbol(' ', ' ', Ctrl('@')))
	set(0x3A, same(Key(CapsLock)))
	for i := 0; i < 10; i++ {
		set(scancode.KeyF1+scancode.KeyIndex(i), same(Key(F1+Tag(i))))
	}
	set(0x45, same(Key(NumLock)))
	set(0x46, same(Key(ScrollLock)))

	pad := "789-456+1230."
	for i := 0; i < len(pad); i++ {
		set(0x47+scancode.KeyIndex(i), keypad(pad[i]))
	}
	set(scancode.KeyF11, same(Key(F11)))
	set(scancode.KeyF12, same(Key(F12)))

	set(scancode.KeyKeypadEnter, same(Char('\n')))
	set(scancode.KeyRightCtrl, same(Key(RightControl)))
	set(0x80|0x35, keypad('/'))
	set(scancode.KeyRightAlt, same(Key(RightAlt)))
	set(scancode.KeyUp, nav(Up, AltUp, ControlUp))
	set(scancode.KeyLeft, nav(Left, AltLeft, ControlLeft))
	set(scancode.KeyRight, nav(Right, AltRight, ControlRight))
	set(scancode.KeyDown, nav(Down, AltDown, ControlDown))
	set(scancode.KeyDelete, same(Key(Delete)))

	return k
}
