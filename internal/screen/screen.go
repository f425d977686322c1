// Package screen hosts the keyboard driver in a terminal: it renders the
// active virtual console with tcell and turns host key events into the
// scancodes a PS/2 keyboard would send.
package screen

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"ps2kbd/internal/console"
	"ps2kbd/internal/keyboard"
)

// View draws a console.Set onto a tcell screen.
type View struct {
	screen   tcell.Screen
	consoles *console.Set

	style       tcell.Style
	statusStyle tcell.Style

	lastVersion uint64
	lastStatus  string
	drawn       bool
}

// NewView creates a view of cs on s.
func NewView(s tcell.Screen, cs *console.Set) *View {
	return &View{
		screen:      s,
		consoles:    cs,
		style:       tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack),
		statusStyle: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorTeal),
	}
}

// Refresh redraws when the consoles or status line changed since the last
// draw. It reports whether it drew.
func (v *View) Refresh(status string) bool {
	if v.drawn && v.consoles.Version() == v.lastVersion && status == v.lastStatus {
		return false
	}
	v.Draw(status)
	return true
}

// Draw renders the active console and a status line below it.
func (v *View) Draw(status string) {
	v.screen.Clear()
	sw, sh := v.screen.Size()

	c := v.consoles.Current()
	w, h := c.Size()
	for row := 0; row < h && row < sh; row++ {
		for col := 0; col < w && col < sw; col++ {
			v.screen.SetContent(col, row, rune(c.At(row, col)), nil, v.style)
		}
	}

	if h < sh {
		v.drawStatus(h, sw, status)
	}

	row, col := c.Cursor()
	if row < sh && col < sw {
		v.screen.ShowCursor(col, row)
	} else {
		v.screen.HideCursor()
	}
	v.screen.Show()

	v.lastVersion = v.consoles.Version()
	v.lastStatus = status
	v.drawn = true
}

func (v *View) drawStatus(row, width int, status string) {
	status = runewidth.FillRight(runewidth.Truncate(status, width, "…"), width)
	col := 0
	for _, r := range status {
		v.screen.SetContent(col, row, r, nil, v.statusStyle)
		col += runewidth.RuneWidth(r)
	}
}

// StatusLine describes the active console, lock state and layout.
func StatusLine(active int, mods keyboard.Modifiers, keymapName string) string {
	var locks []string
	if mods.CapsLock {
		locks = append(locks, "CAPS")
	}
	if mods.NumLock {
		locks = append(locks, "NUM")
	}
	if mods.ScrollLock {
		locks = append(locks, "SCROLL")
	}
	return fmt.Sprintf(" tty%d  [%s]  %s", active+1, strings.Join(locks, " "), keymapName)
}
