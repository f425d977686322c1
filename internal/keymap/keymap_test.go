package keymap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ps2kbd/internal/scancode"
)

// =============================================================================
// Value notation
// =============================================================================

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want Value
	}{
		{"", Value{}},
		{"Unmapped", Value{}},
		{"a", Char('a')},
		{"0x0a", Char('\n')},
		{"lower:q", Lower('q')},
		{"alt:Q", Alt('Q')},
		{"ctrl:A", Ctrl('A')},
		{"CTRLALT:0x5b", CtrlAlt('[')},
		{"F1", Key(F1)},
		{"f12", Key(F12)},
		{"Left", Key(Left)},
		{"ControlUp", Key(ControlUp)},
		{"CapsLock", Key(CapsLock)},
		{"RightAlt", Key(RightAlt)},
		{"Delete", Key(Delete)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseValueInvalid(t *testing.T) {
	for _, in := range []string{"F13", "ascii", "bogus:a", "ctrl:ab", "0xzz", "Delete:a"} {
		_, err := ParseValue(in)
		assert.ErrorIs(t, err, ErrInvalidValue, in)
	}
}

func TestValueStringParses(t *testing.T) {
	USQwerty.Each(func(idx scancode.KeyIndex, s *LayerSet) {
		for l := LayerPlain; l <= LayerAltShift; l++ {
			v := s.Get(l)
			back, err := ParseValue(v.String())
			require.NoError(t, err, "key %#x layer %s", idx, l)
			assert.Equal(t, v, back, "key %#x layer %s", idx, l)
		}
	})
}

func TestValueClassification(t *testing.T) {
	assert.True(t, Lower('a').IsPrintable())
	assert.True(t, CtrlAlt('a').IsControl())
	assert.True(t, Key(NumLock).IsToggle())
	assert.False(t, Key(LeftShift).IsToggle())
	assert.True(t, Key(RightAlt).IsMomentary())
	assert.True(t, Value{}.IsUnmapped())

	for _, tag := range []Tag{Left, AltLeft, ControlLeft} {
		dir, ok := Key(tag).Direction()
		require.True(t, ok)
		assert.Equal(t, Left, dir, tag.String())
	}
	_, ok := Key(Delete).Direction()
	assert.False(t, ok)

	n, ok := Key(F7).FunctionKey()
	require.True(t, ok)
	assert.Equal(t, 7, n)
}

// =============================================================================
// Built-in layout
// =============================================================================

func TestUSQwertyLetters(t *testing.T) {
	s, ok := USQwerty.Lookup(scancode.KeyA)
	require.True(t, ok)
	assert.Equal(t, Lower('a'), s.Plain)
	assert.Equal(t, Char('A'), s.Shift)
	assert.Equal(t, Ctrl('A'), s.Control)
	assert.Equal(t, Alt('A'), s.AltShift)
}

func TestUSQwertyNavigation(t *testing.T) {
	s, ok := USQwerty.Lookup(scancode.KeyLeft)
	require.True(t, ok)
	assert.Equal(t, Key(Left), s.Plain)
	assert.Equal(t, Key(ControlLeft), s.Control)
	assert.Equal(t, Key(AltLeft), s.Alt)
}

func TestUSQwertyFunctionKeys(t *testing.T) {
	idx := []scancode.KeyIndex{0x3b, 0x3c, 0x3d, 0x3e, 0x3f, 0x40, 0x41, 0x42, 0x43, 0x44, 0x57, 0x58}
	for i, k := range idx {
		s, ok := USQwerty.Lookup(k)
		require.True(t, ok)
		n, ok := s.Plain.FunctionKey()
		require.True(t, ok)
		assert.Equal(t, i+1, n)
	}
}

func TestUSQwertyModifiersInEveryLayer(t *testing.T) {
	for _, k := range []scancode.KeyIndex{scancode.KeyLeftShift, scancode.KeyRightShift, scancode.KeyLeftCtrl, scancode.KeyRightCtrl, scancode.KeyLeftAlt, scancode.KeyRightAlt} {
		s, ok := USQwerty.Lookup(k)
		require.True(t, ok)
		for l := LayerPlain; l <= LayerAltShift; l++ {
			assert.True(t, s.Get(l).IsMomentary(), "key %#x layer %s", k, l)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := USQwerty.Clone("copy")
	c.Set(scancode.KeyA, nil)

	_, ok := c.Lookup(scancode.KeyA)
	assert.False(t, ok)
	_, ok = USQwerty.Lookup(scancode.KeyA)
	assert.True(t, ok)
	assert.Equal(t, USQwerty.Len()-1, c.Len())
}

// =============================================================================
// Files
// =============================================================================

const dvorakFragmentTOML = `
name = "us-dvorak-fragment"
base = "us"

[keys.0x10]
plain = "0x27"
shift = '"'

[keys.0x1e]
plain = "lower:a"
shift = "A"
control = "ctrl:A"
alt = "alt:a"
altgr = "alt:a"
alt_shift = "alt:A"
`

func TestParseTOML(t *testing.T) {
	km, err := Parse([]byte(dvorakFragmentTOML), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "us-dvorak-fragment", km.Name)

	s, ok := km.Lookup(0x10)
	require.True(t, ok)
	assert.Equal(t, Char('\''), s.Plain)
	assert.Equal(t, Char('"'), s.Shift)
	assert.True(t, s.Control.IsUnmapped())

	// Untouched keys come from the base layout.
	s, ok = km.Lookup(scancode.KeyLeft)
	require.True(t, ok)
	assert.Equal(t, Key(Left), s.Plain)
}

func TestParseYAML(t *testing.T) {
	doc := `
name: tiny
keys:
  "0x3b":
    plain: F1
  "0xcb":
    plain: Left
    control: ControlLeft
`
	km, err := Parse([]byte(doc), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 2, km.Len())

	s, ok := km.Lookup(scancode.KeyLeft)
	require.True(t, ok)
	assert.Equal(t, Key(ControlLeft), s.Control)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	tests := map[string]string{
		"missing name":   "keys:\n  \"0x1e\":\n    plain: a\n",
		"bad key":        "name: x\nkeys:\n  \"30\":\n    plain: a\n",
		"unknown slot":   "name: x\nkeys:\n  \"0x1e\":\n    hyper: a\n",
		"unknown field":  "name: x\nkeys: {}\nextra: 1\n",
		"non-string val": "name: x\nkeys:\n  \"0x1e\":\n    plain: [1, 2]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), FormatYAML)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	_, err := Parse([]byte("name: x\nkeys:\n  \"0x1e\":\n    plain: F99\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = Parse([]byte("name: x\nbase: azerty\nkeys: {}\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrUnknownBase)
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			data, err := USQwerty.Encode(format)
			require.NoError(t, err)

			km, err := Parse(data, format)
			require.NoError(t, err)
			assert.Equal(t, USQwerty.Len(), km.Len())

			USQwerty.Each(func(idx scancode.KeyIndex, want *LayerSet) {
				got, ok := km.Lookup(idx)
				require.True(t, ok, "key %#x", idx)
				assert.Equal(t, *want, *got, "key %#x", idx)
			})
		})
	}
}

func TestLoadFileAndBuiltin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.toml")
	require.NoError(t, os.WriteFile(path, []byte(dvorakFragmentTOML), 0600))

	km, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "us-dvorak-fragment", km.Name)

	km, err = Load("builtin:us")
	require.NoError(t, err)
	assert.Equal(t, USQwerty.Len(), km.Len())

	_, err = Load("builtin:colemak")
	assert.ErrorIs(t, err, ErrUnknownBase)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("a/b.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("x.YAML"))
	assert.Equal(t, FormatJSON, FormatFromPath("x.json"))
	assert.Equal(t, FormatTOML, FormatFromPath("x.toml"))
	assert.Equal(t, FormatTOML, FormatFromPath("noext"))
}
