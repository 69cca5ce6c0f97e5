// Package timing derives how long each frame stays on screen.
package timing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/san-kum/asciiplay/internal/anim"
)

const (
	// DefaultFPS applies when neither the frame nor the caller gives a rate.
	DefaultFPS = 24.0

	// MinFrameDuration keeps the playback loop from spinning on zero waits.
	MinFrameDuration = time.Millisecond

	// MaxFrameDuration is the longest wait time.Duration can express.
	MaxFrameDuration = time.Duration(math.MaxInt64)
)

// ErrInvalidFPS is returned by CheckFPS.
var ErrInvalidFPS = errors.New("timing: fps must be a positive finite number")

// CheckFPS rejects a rate given explicitly by the user that cannot pace
// playback: zero, negative, NaN or infinite.
func CheckFPS(fps float64) error {
	if math.IsNaN(fps) || math.IsInf(fps, 0) || fps <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidFPS, fps)
	}
	return nil
}

// FrameDuration returns the display time of one frame. A positive authored
// duration (milliseconds) wins; otherwise 1/fps, with an fps that is not a
// positive finite number meaning 24. The result lies in
// [MinFrameDuration, MaxFrameDuration].
func FrameDuration(f *anim.Frame, fps float64) time.Duration {
	if CheckFPS(fps) != nil {
		fps = DefaultFPS
	}

	var ns float64
	if f != nil && f.HasDuration && f.Duration > 0 {
		ns = f.Duration * float64(time.Millisecond)
	} else {
		ns = float64(time.Second) / fps
	}
	return clamp(ns)
}

func clamp(ns float64) time.Duration {
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits.
	if ns >= float64(math.MaxInt64) {
		return MaxFrameDuration
	}
	if d := time.Duration(ns); d > MinFrameDuration {
		return d
	}
	return MinFrameDuration
}

// Durations computes one duration per frame, in order.
func Durations(frames []anim.Frame, fps float64) []time.Duration {
	out := make([]time.Duration, len(frames))
	for i := range frames {
		out[i] = FrameDuration(&frames[i], fps)
	}
	return out
}

// Stats summarizes a timeline.
type Stats struct {
	Frames       int
	Total        time.Duration
	Min          time.Duration
	Max          time.Duration
	Mean         time.Duration
	EffectiveFPS float64
}

// Summarize aggregates durations. The zero Stats is returned for an empty input.
func Summarize(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}

	s := Stats{Frames: len(durations), Min: durations[0], Max: durations[0]}
	for _, d := range durations {
		if s.Total > MaxFrameDuration-d {
			s.Total = MaxFrameDuration
		} else {
			s.Total += d
		}
		if d < s.Min {
			s.Min = d
		}
		if d > s.Max {
			s.Max = d
		}
	}
	s.Mean = s.Total / time.Duration(len(durations))
	if s.Total > 0 {
		s.EffectiveFPS = float64(len(durations)) / s.Total.Seconds()
	}
	return s
}

// Milliseconds converts durations for charting and export.
func Milliseconds(durations []time.Duration) []float64 {
	out := make([]float64, len(durations))
	for i, d := range durations {
		out[i] = float64(d) / float64(time.Millisecond)
	}
	return out
}
