// Package console implements text-mode virtual consoles: fixed-size cell
// grids with a cursor, fed one byte at a time.
//
// A Set of consoles is the keyboard driver's display. Only the active console
// receives output; function keys switch between them.
package console

import (
	"strings"
)

// Cursor movement sequences understood by Write.
const (
	CursorUp    = "\x1b[A"
	CursorDown  = "\x1b[B"
	CursorRight = "\x1b[C"
	CursorLeft  = "\x1b[D"
)

// Default geometry of a VGA text console.
const (
	DefaultWidth  = 80
	DefaultHeight = 25
	DefaultCount  = 12
)

const (
	esc       = 0x1B
	del       = 0x7F
	blank     = ' '
	tabStop   = 8
	badGlyph  = '?'
	caretChar = '^'
)

type escState uint8

const (
	stateNormal escState = iota
	stateEscape
	stateCSI
)

// Console is one text screen.
type Console struct {
	width, height int
	cells         []byte
	row, col      int
	state         escState
}

// NewConsole creates a blank console.
func NewConsole(width, height int) *Console {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	c := &Console{width: width, height: height, cells: make([]byte, width*height)}
	c.Clear()
	return c
}

// Size returns the console geometry.
func (c *Console) Size() (width, height int) {
	return c.width, c.height
}

// Cursor returns the cursor position.
func (c *Console) Cursor() (row, col int) {
	return c.row, c.col
}

// Clear blanks the screen and homes the cursor.
func (c *Console) Clear() {
	for i := range c.cells {
		c.cells[i] = blank
	}
	c.row, c.col = 0, 0
	c.state = stateNormal
}

// At returns the byte in a cell.
func (c *Console) At(row, col int) byte {
	if row < 0 || row >= c.height || col < 0 || col >= c.width {
		return blank
	}
	return c.cells[row*c.width+col]
}

// Line returns row with trailing blanks removed.
func (c *Console) Line(row int) string {
	if row < 0 || row >= c.height {
		return ""
	}
	start := row * c.width
	return strings.TrimRight(string(c.cells[start:start+c.width]), " ")
}

// Text returns the screen contents without trailing blank lines.
func (c *Console) Text() string {
	lines := make([]string, c.height)
	for i := range lines {
		lines[i] = c.Line(i)
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// Write interprets one output byte.
func (c *Console) Write(b byte) {
	switch c.state {
	case stateEscape:
		if b == '[' {
			c.state = stateCSI
			return
		}
		// A lone ESC is shown like any other control code.
		c.state = stateNormal
		c.caret(esc)
		c.Write(b)
		return
	case stateCSI:
		c.state = stateNormal
		c.csi(b)
		return
	}

	switch {
	case b == esc:
		c.state = stateEscape
	case b == '\n':
		c.col = 0
		c.lineFeed()
	case b == '\r':
		c.col = 0
	case b == '\b':
		if c.col > 0 {
			c.col--
		}
	case b == '\t':
		next := (c.col/tabStop + 1) * tabStop
		for c.col < next && c.col < c.width-1 {
			c.put(blank)
		}
	case b == del:
		if c.col > 0 {
			c.col--
			c.cells[c.row*c.width+c.col] = blank
		}
	case b < ' ':
		c.caret(b)
	case b > del:
		c.put(badGlyph)
	default:
		c.put(b)
	}
}

// caret renders a control code as ^X.
func (c *Console) caret(b byte) {
	c.put(caretChar)
	c.put(b + '@')
}

func (c *Console) csi(b byte) {
	switch b {
	case 'A':
		if c.row > 0 {
			c.row--
		}
	case 'B':
		if c.row < c.height-1 {
			c.row++
		}
	case 'C':
		if c.col < c.width-1 {
			c.col++
		}
	case 'D':
		if c.col > 0 {
			c.col--
		}
	}
}

func (c *Console) put(b byte) {
	c.cells[c.row*c.width+c.col] = b
	c.col++
	if c.col == c.width {
		c.col = 0
		c.lineFeed()
	}
}

func (c *Console) lineFeed() {
	if c.row < c.height-1 {
		c.row++
		return
	}
	copy(c.cells, c.cells[c.width:])
	last := c.cells[(c.height-1)*c.width:]
	for i := range last {
		last[i] = blank
	}
}
