package console

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeString(c interface{ WriteChar(byte) }, s string) {
	for i := 0; i < len(s); i++ {
		c.WriteChar(s[i])
	}
}

type consoleWriter struct{ *Console }

func (w consoleWriter) WriteChar(b byte) { w.Write(b) }

func TestConsolePrintable(t *testing.T) {
	c := NewConsole(10, 3)
	writeString(consoleWriter{c}, "hi\nthere")

	assert.Equal(t, "hi", c.Line(0))
	assert.Equal(t, "there", c.Line(1))
	row, col := c.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 5, col)
}

func TestConsoleWrapAndScroll(t *testing.T) {
	c := NewConsole(4, 2)
	writeString(consoleWriter{c}, "abcdefgh")

	// The second wrap scrolls "abcd" off the top.
	assert.Equal(t, "efgh", c.Line(0))
	assert.Equal(t, "", c.Line(1))
	row, col := c.Cursor()
	assert.Equal(t, 1, row)
	assert.Equal(t, 0, col)
}

func TestConsoleCursorSequences(t *testing.T) {
	c := NewConsole(10, 5)
	w := consoleWriter{c}
	writeString(w, "abc")
	writeString(w, CursorLeft+CursorLeft)
	writeString(w, "X")
	assert.Equal(t, "aXc", c.Line(0))

	writeString(w, CursorDown+CursorDown+CursorRight)
	row, col := c.Cursor()
	assert.Equal(t, 2, row)
	assert.Equal(t, 3, col)

	writeString(w, CursorUp+CursorUp+CursorUp+CursorUp)
	row, _ = c.Cursor()
	assert.Equal(t, 0, row, "cursor stops at the top row")
}

func TestConsoleControlCodes(t *testing.T) {
	c := NewConsole(20, 2)
	w := consoleWriter{c}

	writeString(w, "ab\x01")
	assert.Equal(t, "ab^A", c.Line(0))

	writeString(w, "\x7f\x7f")
	assert.Equal(t, "ab", c.Line(0), "delete erases the cell before the cursor")

	writeString(w, "\x1bq")
	assert.Equal(t, "ab^[q", c.Line(0), "lone escape is shown in caret form")

	writeString(w, "\x1b[Z")
	assert.Equal(t, "ab^[q", c.Line(0), "unknown CSI final byte is swallowed")
}

func TestConsoleTabAndBackspace(t *testing.T) {
	c := NewConsole(20, 1)
	w := consoleWriter{c}
	writeString(w, "a\tb")
	_, col := c.Cursor()
	assert.Equal(t, 9, col)

	writeString(w, "\b\b")
	_, col = c.Cursor()
	assert.Equal(t, 7, col)
}

func TestSetSwitchConsole(t *testing.T) {
	s := NewSet(3, 10, 2, nil)
	require.Equal(t, 3, s.Len())

	writeString(s, "one")
	s.SwitchConsole(1)
	writeString(s, "two")
	s.SwitchConsole(11)
	assert.Equal(t, 1, s.Active(), "out of range switch is ignored")

	assert.Equal(t, "one", s.Console(0).Line(0))
	assert.Equal(t, "two", s.Console(1).Line(0))
	assert.Equal(t, "", s.Console(2).Text())
	assert.Nil(t, s.Console(3))
}

func TestSetVersion(t *testing.T) {
	s := NewSet(2, 10, 2, nil)
	v := s.Version()

	s.SwitchConsole(0)
	assert.Equal(t, v, s.Version(), "switching to the active console changes nothing")

	s.WriteChar('x')
	assert.NotEqual(t, v, s.Version())
}
