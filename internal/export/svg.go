package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/asciiplay/internal/anim"
	"github.com/san-kum/asciiplay/internal/palette"
	"github.com/san-kum/asciiplay/internal/render"
)

const defaultInk = "#d0d0d0"

// FrameToSVG draws a frame as monospace text, one <tspan> per color run.
// width 0 uses the frame's own width; scale is the cell height in pixels.
func FrameToSVG(f *anim.Frame, width int, scale float64) string {
	if f == nil {
		return ""
	}
	if width <= 0 {
		width = render.Width(f)
	}
	if scale <= 0 {
		scale = 16
	}

	cellW := scale * 0.6
	w := float64(width) * cellW
	h := float64(len(f.Lines)) * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<g font-family="monospace" font-size="%.1f" fill="%s" xml:space="preserve">
`, w, h, w, h, scale, defaultInk))

	colors := render.ColorMap(f)

	for row, line := range f.Lines {
		y := float64(row+1)*scale - scale*0.2
		sb.WriteString(fmt.Sprintf(`<text x="0" y="%.1f">`, y))

		var run strings.Builder
		runColor := ""
		flush := func() {
			if run.Len() == 0 {
				return
			}
			text := html.EscapeString(run.String())
			if runColor == "" {
				sb.WriteString("<tspan>" + text + "</tspan>")
			} else {
				sb.WriteString(fmt.Sprintf(`<tspan fill="%s">%s</tspan>`, runColor, text))
			}
			run.Reset()
		}

		col := 0
		for _, ch := range line {
			color := ""
			if c, ok := colors[anim.Cell{Row: row, Col: col}]; ok {
				color = hex(c)
			}
			if color != runColor {
				flush()
				runColor = color
			}
			run.WriteRune(ch)
			col++
		}
		flush()

		sb.WriteString("</text>\n")
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func hex(c palette.RGB) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
