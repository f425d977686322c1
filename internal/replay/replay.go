// Package replay feeds recorded scancode scripts through a driver.
//
// A script is text holding hex bytes separated by whitespace or commas, with
// an optional 0x prefix. A '#' starts a comment that runs to the end of the
// line:
//
//	# shift down, a, a up, shift up
//	2a 1e 9e aa
//	0xe0 0x4b  0xe0 0xcb   # left arrow
package replay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"ps2kbd/internal/console"
	"ps2kbd/internal/keyboard"
	"ps2kbd/internal/port"
	"ps2kbd/internal/scancode"
)

// ErrSyntax is wrapped by every script parse error.
var ErrSyntax = errors.New("invalid scancode script")

// Parse reads a script into the raw byte stream.
func Parse(r io.Reader) ([]byte, error) {
	var out []byte
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})
		for _, f := range fields {
			digits := strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
			if len(digits) == 0 || len(digits) > 2 {
				return nil, fmt.Errorf("%w: line %d: %q is not a byte", ErrSyntax, line, f)
			}
			b, err := strconv.ParseUint(digits, 16, 8)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %q is not a byte", ErrSyntax, line, f)
			}
			out = append(out, byte(b))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return out, nil
}

// Options configures a replay.
type Options struct {
	Driver keyboard.Options

	// Consoles, Width and Height size the console set (defaults from the
	// console package).
	Consoles      int
	Width, Height int

	// Batch is how many bytes reach the port between drains. Zero feeds
	// the whole script before the first drain, which exercises the queue
	// bound.
	Batch int
}

// Result is the state after a replay.
type Result struct {
	Consoles  *console.Set
	Modifiers keyboard.Modifiers
	Processed int
}

// Run feeds script through a fresh driver and returns the consoles it
// wrote.
func Run(script []byte, opts Options) *Result {
	if opts.Driver.Logger == nil {
		opts.Driver.Logger = slog.New(slog.DiscardHandler)
	}
	width, height := opts.Width, opts.Height
	if width <= 0 {
		width = console.DefaultWidth
	}
	if height <= 0 {
		height = console.DefaultHeight
	}

	cs := console.NewSet(opts.Consoles, width, height, opts.Driver.Logger)
	p := port.NewSimulated()
	drv := keyboard.New(p, cs, opts.Driver)

	batch := opts.Batch
	if batch <= 0 {
		batch = len(script)
	}

	tr := scancode.NewTranslator(opts.Driver.Set)
	res := &Result{Consoles: cs}
	for start, end := 0, 0; start < len(script); start = end {
		// Batches end on code boundaries so no prefix is cut from its bytes.
		for end < len(script) && (end == start || end-start < batch) {
			end += tr.WireLen(script[end:])
		}
		p.Feed(script[start:end]...)
		for drv.Poll() {
		}
		res.Processed += drv.Interpret()
	}
	res.Modifiers = drv.Modifiers()
	return res
}
