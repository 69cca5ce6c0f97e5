// Package render turns animation frames into terminal-ready text.
//
// Colored output emits an escape sequence only where the foreground color
// changes between neighbouring characters, so a run of same-colored cells
// costs one escape.
package render

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/san-kum/asciiplay/internal/anim"
	"github.com/san-kum/asciiplay/internal/palette"
	"github.com/san-kum/asciiplay/internal/terminal"
)

// ErrRender is reserved. Malformed color data degrades to uncolored cells
// instead of failing a frame.
var ErrRender = errors.New("render: failed to render frame")

// Text returns the frame lines joined by newlines, without escapes.
func Text(f *anim.Frame) string {
	if f == nil {
		return ""
	}
	return strings.Join(f.Lines, "\n")
}

// Width returns the widest line of f in characters.
func Width(f *anim.Frame) int {
	w := 0
	for _, l := range f.Lines {
		if n := utf8.RuneCountInString(l); n > w {
			w = n
		}
	}
	return w
}

// ColorMap resolves the frame's authored foreground colors. Entries that are
// not valid hex colors are left out.
func ColorMap(f *anim.Frame) map[anim.Cell]palette.RGB {
	out := make(map[anim.Cell]palette.RGB, len(f.Foreground))
	for cell, hex := range f.Foreground {
		if c, ok := palette.ParseHex(hex); ok {
			out[cell] = c
		}
	}
	return out
}

// Render composes one frame for the given color mode. A width of 0 means
// the frame's own widest line; lines are padded, never truncated.
func Render(f *anim.Frame, mode palette.Mode, width int) string {
	if f == nil {
		return ""
	}
	if mode == palette.None {
		return Text(f)
	}

	if width <= 0 {
		width = Width(f)
	}
	colors := ColorMap(f)

	var sb strings.Builder
	for row, line := range f.Lines {
		if row > 0 {
			sb.WriteByte('\n')
		}
		if pad := width - utf8.RuneCountInString(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		writeLine(&sb, line, row, colors, mode)
	}
	return sb.String()
}

// RenderAll renders every frame once for a playback session.
func RenderAll(frames []anim.Frame, mode palette.Mode, width int) []string {
	out := make([]string, len(frames))
	for i := range frames {
		out[i] = Render(&frames[i], mode, width)
	}
	return out
}

// code is the escape-family value for a cell: packed RGB for truecolor,
// the palette index for 256. -1 means uncolored.
func code(c palette.RGB, mode palette.Mode) int {
	if mode == palette.ANSI256 {
		return int(palette.RGBTo256(c))
	}
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

func writeLine(sb *strings.Builder, line string, row int, colors map[anim.Cell]palette.RGB, mode palette.Mode) {
	prev := -1
	col := 0
	for _, ch := range line {
		cur := -1
		if c, ok := colors[anim.Cell{Row: row, Col: col}]; ok {
			cur = code(c, mode)
		}
		if cur != prev {
			if prev != -1 {
				sb.WriteString(terminal.Reset)
			}
			if cur != -1 {
				writeColor(sb, cur, mode)
			}
			prev = cur
		}
		sb.WriteRune(ch)
		col++
	}
	if prev != -1 {
		sb.WriteString(terminal.Reset)
	}
}

func writeColor(sb *strings.Builder, v int, mode palette.Mode) {
	if mode == palette.ANSI256 {
		sb.WriteString("\x1b[38;5;")
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte('m')
		return
	}
	sb.WriteString("\x1b[38;2;")
	sb.WriteString(strconv.Itoa(v >> 16))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(v >> 8 & 0xff))
	sb.WriteByte(';')
	sb.WriteString(strconv.Itoa(v & 0xff))
	sb.WriteByte('m')
}
