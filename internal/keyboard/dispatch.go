package keyboard

import (
	"ps2kbd/internal/console"
	"ps2kbd/internal/keymap"
)

// ActionKind is the side effect a key event asks for.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionEmitChar
	ActionSetModifier
	ActionToggleModifier
	ActionSwitchConsole
)

func (k ActionKind) String() string {
	switch k {
	case ActionEmitChar:
		return "emit"
	case ActionSetModifier:
		return "set_modifier"
	case ActionToggleModifier:
		return "toggle_modifier"
	case ActionSwitchConsole:
		return "switch_console"
	default:
		return "none"
	}
}

// Action is the outcome of dispatching one resolved key value.
type Action struct {
	Kind ActionKind

	// Text holds the bytes to emit for ActionEmitChar: one character, or a
	// cursor escape sequence.
	Text string

	// Modifier and Pressed describe ActionSetModifier/ActionToggleModifier.
	Modifier Modifier
	Pressed  bool

	// Console is the zero-based target of ActionSwitchConsole.
	Console uint8
}

// DeleteChar is emitted by the Delete key.
const DeleteChar = 0x7F

// controlMask reduces a character to its C0 control code.
const controlMask = 0x3F

// Dispatch maps a resolved value and the press/release bit to an action.
// It has no side effects. Character, navigation and function keys act on
// press only; momentary modifiers act on both edges.
func Dispatch(v keymap.Value, pressed bool) Action {
	switch {
	case v.IsMomentary():
		return Action{Kind: ActionSetModifier, Modifier: modifierFor(v.Tag), Pressed: pressed}
	case !pressed:
		return Action{}
	case v.IsPrintable():
		return emit(string([]byte{v.Char}))
	case v.IsControl():
		// ControlAlt is masked exactly like Control.
		return emit(string([]byte{v.Char & controlMask}))
	case v.IsToggle():
		return Action{Kind: ActionToggleModifier, Modifier: modifierFor(v.Tag), Pressed: true}
	case v.Tag == keymap.Delete:
		return emit(string([]byte{DeleteChar}))
	}

	if dir, ok := v.Direction(); ok {
		return emit(cursorSequence(dir))
	}
	if n, ok := v.FunctionKey(); ok {
		return Action{Kind: ActionSwitchConsole, Console: uint8(n - 1)}
	}
	return Action{}
}

func emit(s string) Action {
	return Action{Kind: ActionEmitChar, Text: s}
}

func cursorSequence(dir keymap.Tag) string {
	switch dir {
	case keymap.Up:
		return console.CursorUp
	case keymap.Down:
		return console.CursorDown
	case keymap.Left:
		return console.CursorLeft
	default:
		return console.CursorRight
	}
}
