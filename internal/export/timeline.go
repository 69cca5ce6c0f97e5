package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/asciiplay/internal/anim"
	"github.com/san-kum/asciiplay/internal/render"
	"github.com/san-kum/asciiplay/internal/timing"
)

type FrameEntry struct {
	Index        int      `json:"index"`
	StartMS      float64  `json:"start_ms"`
	DurationMS   float64  `json:"duration_ms"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	ColoredCells int      `json:"colored_cells"`
	Lines        []string `json:"lines"`
}

type Timeline struct {
	Source      string         `json:"source"`
	Frames      int            `json:"frames"`
	TotalMS     float64        `json:"total_ms"`
	CanvasWidth int            `json:"canvas_width,omitempty"`
	Metadata    map[string]any `json:"metadata"`
	Entries     []FrameEntry   `json:"timeline"`
}

// NewTimeline lays the document out on a time axis using the same duration
// rules as playback.
func NewTimeline(source string, doc *anim.Document, fps float64) *Timeline {
	durations := timing.Milliseconds(timing.Durations(doc.Frames, fps))

	t := &Timeline{
		Source:      source,
		Frames:      len(doc.Frames),
		CanvasWidth: doc.Canvas.Width,
		Metadata:    doc.Metadata,
		Entries:     make([]FrameEntry, len(doc.Frames)),
	}

	start := 0.0
	for i := range doc.Frames {
		f := &doc.Frames[i]
		t.Entries[i] = FrameEntry{
			Index:        i,
			StartMS:      start,
			DurationMS:   durations[i],
			Width:        render.Width(f),
			Height:       len(f.Lines),
			ColoredCells: len(render.ColorMap(f)),
			Lines:        f.Lines,
		}
		start += durations[i]
	}
	t.TotalMS = start
	return t
}

func WriteJSON(w io.Writer, t *Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// WriteCSV writes one row per frame. Frame text is omitted.
func WriteCSV(w io.Writer, t *Timeline) error {
	cw := csv.NewWriter(w)

	header := []string{"index", "start_ms", "duration_ms", "width", "height", "colored_cells"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, e := range t.Entries {
		row := []string{
			strconv.Itoa(e.Index),
			strconv.FormatFloat(e.StartMS, 'f', 3, 64),
			strconv.FormatFloat(e.DurationMS, 'f', 3, 64),
			strconv.Itoa(e.Width),
			strconv.Itoa(e.Height),
			strconv.Itoa(e.ColoredCells),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
