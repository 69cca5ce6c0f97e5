package anim

import "strings"

// ContentKind tags which representation a frame's text was authored in.
type ContentKind uint8

const (
	ContentNone  ContentKind = iota // neither field present
	PlainLines                      // "content": ["line", ...]
	JoinedString                    // "contentString": "line\nline"
)

func (k ContentKind) String() string {
	switch k {
	case PlainLines:
		return "lines"
	case JoinedString:
		return "string"
	default:
		return "none"
	}
}

// Content is the authored text of a frame before normalization.
type Content struct {
	Kind  ContentKind
	Lines []string
	Text  string
}

// Normalize resolves either representation into one line sequence
// with trailing newline characters removed.
func (c Content) Normalize() []string {
	var joined string
	switch c.Kind {
	case JoinedString:
		joined = strings.TrimRight(c.Text, "\n")
	case PlainLines:
		trimmed := make([]string, len(c.Lines))
		for i, l := range c.Lines {
			trimmed[i] = strings.TrimRight(l, "\n")
		}
		joined = strings.Join(trimmed, "\n")
	default:
		return []string{}
	}
	if joined == "" {
		return []string{}
	}

	lines := strings.Split(joined, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Cell addresses a character position inside a frame.
type Cell struct {
	Row int
	Col int
}

// Frame is one discrete state of the animation.
type Frame struct {
	Content Content
	// Lines is Content normalized at load time; renderers only read this.
	Lines []string
	// Foreground maps cells to authored color strings (usually #rrggbb).
	Foreground map[Cell]string
	// Duration in milliseconds, meaningful only when HasDuration is set.
	Duration    float64
	HasDuration bool
}

// Canvas carries optional sizing hints; Width 0 means unspecified.
type Canvas struct {
	Width int
}

// Document is a decoded animation file.
type Document struct {
	Frames   []Frame
	Metadata map[string]any
	Canvas   Canvas
}

// BackfillDurations assigns 1000/fps milliseconds to frames that carry no
// numeric duration. Frames with an explicit duration are left alone.
func (d *Document) BackfillDurations(fps float64) {
	if fps <= 0 {
		return
	}
	for i := range d.Frames {
		if !d.Frames[i].HasDuration {
			d.Frames[i].Duration = 1000.0 / fps
			d.Frames[i].HasDuration = true
		}
	}
}
