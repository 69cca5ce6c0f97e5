package anim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var drivePath = regexp.MustCompile(`^[A-Za-z]:[\\/]`)

// ResolvePath makes a relative path absolute against the working directory.
// Absolute and drive-letter paths are returned unchanged.
func ResolvePath(path string) (string, error) {
	if filepath.IsAbs(path) || drivePath.MatchString(path) {
		return path, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, path), nil
}

// Load reads and decodes the animation document at path.
func Load(path string) (*Document, error) {
	resolved, err := ResolvePath(path)
	if err != nil {
		return nil, &LoadError{Path: path, Kind: ErrRead, Err: err}
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return nil, &LoadError{Path: resolved, Kind: ErrNotFound}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &LoadError{Path: resolved, Kind: ErrRead, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Path: resolved, Kind: ErrParse, Err: err}
	}
	return doc, nil
}

type rawFrame struct {
	Duration      json.RawMessage `json:"duration"`
	ContentString json.RawMessage `json:"contentString"`
	Content       json.RawMessage `json:"content"`
	Colors        json.RawMessage `json:"colors"`
}

type rawColors struct {
	Foreground json.RawMessage `json:"foreground"`
}

// Parse decodes a document from JSON bytes. Unknown fields are ignored.
func Parse(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, fmt.Errorf("top level must be an object")
	}

	doc := &Document{
		Frames:   []Frame{},
		Metadata: map[string]any{},
	}

	if raw, ok := top["frames"]; ok && !isNull(raw) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("frames must be an array")
		}
		doc.Frames = make([]Frame, 0, len(items))
		for i, item := range items {
			f, err := decodeFrame(item)
			if err != nil {
				return nil, fmt.Errorf("frame %d: %w", i, err)
			}
			doc.Frames = append(doc.Frames, f)
		}
	}

	if raw, ok := top["metadata"]; ok {
		var meta map[string]any
		if json.Unmarshal(raw, &meta) == nil && meta != nil {
			doc.Metadata = meta
		}
	}

	if raw, ok := top["canvas"]; ok {
		var canvas struct {
			Width json.RawMessage `json:"width"`
		}
		if json.Unmarshal(raw, &canvas) == nil {
			doc.Canvas.Width = positiveInt(canvas.Width)
		}
	}

	return doc, nil
}

func decodeFrame(raw json.RawMessage) (Frame, error) {
	var f Frame
	if isNull(raw) {
		f.Lines = []string{}
		return f, nil
	}

	var rf rawFrame
	if err := json.Unmarshal(raw, &rf); err != nil {
		return f, fmt.Errorf("frame must be an object")
	}

	var s string
	if json.Unmarshal(rf.ContentString, &s) == nil && s != "" {
		f.Content = Content{Kind: JoinedString, Text: s}
	} else if items, ok := stringList(rf.Content); ok {
		f.Content = Content{Kind: PlainLines, Lines: items}
	}
	f.Lines = f.Content.Normalize()

	var d float64
	if len(rf.Duration) > 0 && !isNull(rf.Duration) && json.Unmarshal(rf.Duration, &d) == nil {
		f.Duration = d
		f.HasDuration = true
	}

	var colors rawColors
	if len(rf.Colors) > 0 && json.Unmarshal(rf.Colors, &colors) == nil {
		f.Foreground = parseForeground(colors.Foreground)
	}

	return f, nil
}

// stringList decodes a JSON array, mapping non-string entries to "".
func stringList(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	out := make([]string, len(items))
	for i, item := range items {
		var s string
		if json.Unmarshal(item, &s) == nil {
			out[i] = s
		}
	}
	return out, true
}

// parseForeground accepts either a JSON-encoded string holding the
// "col,row" -> color object, or the object itself.
func parseForeground(raw json.RawMessage) map[Cell]string {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var encoded string
	if json.Unmarshal(raw, &encoded) == nil {
		raw = json.RawMessage(encoded)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}

	out := make(map[Cell]string, len(entries))
	for key, val := range entries {
		cell, ok := ParseCellKey(key)
		if !ok {
			continue
		}
		var color string
		if json.Unmarshal(val, &color) != nil || color == "" {
			continue
		}
		out[cell] = color
	}
	return out
}

// ParseCellKey parses a "col,row" coordinate key.
func ParseCellKey(key string) (Cell, bool) {
	parts := strings.Split(key, ",")
	if len(parts) != 2 {
		return Cell{}, false
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Cell{}, false
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Cell{}, false
	}
	return Cell{Row: row, Col: col}, true
}

func positiveInt(raw json.RawMessage) int {
	var v float64
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return 0
	}
	if v < 1 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0
	}
	return int(v)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
