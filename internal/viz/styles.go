package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	Warning = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Field is one label/value row of a report.
type Field struct {
	Label string
	Value string
}

// F builds a Field, formatting value with %v.
func F(label string, value any) Field {
	return Field{Label: label, Value: fmt.Sprint(value)}
}

// Report renders a titled panel of aligned label/value rows.
func Report(title string, fields []Field) string {
	width := 0
	for _, f := range fields {
		if len(f.Label) > width {
			width = len(f.Label)
		}
	}

	var sb strings.Builder
	sb.WriteString(Title.Render(title))
	for _, f := range fields {
		sb.WriteByte('\n')
		label := f.Label + strings.Repeat(" ", width-len(f.Label))
		sb.WriteString(MetricLabel.Render(label))
		sb.WriteString("  ")
		sb.WriteString(MetricValue.Render(f.Value))
	}
	return Panel.Render(sb.String())
}

// SparklineChart renders a mini sparkline from values
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := len(values) / width
	if step < 1 {
		step = 1
	}

	var result strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = min(max(idx, 0), len(chars)-1)

		c := string(chars[idx])
		if norm > 0.7 {
			result.WriteString(SparkHigh.Render(c))
		} else if norm > 0.3 {
			result.WriteString(SparkMid.Render(c))
		} else {
			result.WriteString(SparkLow.Render(c))
		}
	}

	return result.String()
}

// Separator returns a decorative horizontal rule.
func Separator(width int) string {
	if width < 8 {
		return Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	left := strings.Repeat("─", mid-3)
	right := strings.Repeat("─", width-mid-3)
	return Subtle.Render(left + " ◆ " + right)
}
