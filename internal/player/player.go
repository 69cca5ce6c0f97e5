package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/asciiplay/internal/anim"
	"github.com/san-kum/asciiplay/internal/palette"
	"github.com/san-kum/asciiplay/internal/render"
	"github.com/san-kum/asciiplay/internal/terminal"
	"github.com/san-kum/asciiplay/internal/timing"
)

// ErrPlayback wraps failures inside the playback loop, such as a write to a
// closed terminal. Cleanup has already run when it is returned.
var ErrPlayback = errors.New("player: playback failed")

// MaxNap bounds a single sleep inside the frame wait.
const MaxNap = 10 * time.Millisecond

// Options configures one playback session.
type Options struct {
	Loop bool
	// FPS overrides the 24 fps default for frames without a duration; 0 keeps the default.
	FPS float64
	// CanvasWidth pads every line to a fixed width; 0 uses each frame's own width.
	CanvasWidth int
	Color       bool
	// ForceMode skips detection when set to palette.ANSI256 or palette.TrueColor.
	ForceMode palette.Mode
	// PreferFlicker clears the whole screen before every frame instead of
	// drawing in place on the alternate screen.
	PreferFlicker bool
}

// Player drives a single playback session on one output.
type Player struct {
	screen *terminal.Screen
	logger *log.Logger
	getenv func(string) string
	now    func() time.Time
	sleep  func(time.Duration)
}

// Option customizes a Player.
type Option func(*Player)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Player) { p.logger = l }
}

// WithEnv replaces os.Getenv for color detection.
func WithEnv(getenv func(string) string) Option {
	return func(p *Player) { p.getenv = getenv }
}

// WithClock replaces the wall clock used to pace frames.
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(p *Player) {
		p.now = now
		p.sleep = sleep
	}
}

// New creates a Player writing to w.
func New(w io.Writer, opts ...Option) *Player {
	p := &Player{
		screen: terminal.NewScreen(w),
		logger: log.Default(),
		getenv: os.Getenv,
		now:    time.Now,
		sleep:  time.Sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Restore puts the terminal back: cursor shown, alternate screen left.
// It is idempotent and may be called from a signal handler goroutine while
// Play is running; Play stops drawing once it has run.
func (p *Player) Restore() error {
	return p.screen.Restore()
}

// Play renders every frame up front and then shows them in order, each for
// its computed duration, until the last frame (or forever with Loop).
// Cancelling ctx ends playback cleanly and returns nil.
func (p *Player) Play(ctx context.Context, frames []anim.Frame, opts Options) (err error) {
	if len(frames) == 0 {
		// Print bypasses the level filter.
		p.logger.Print("no frames found in animation")
		return nil
	}

	mode := palette.DetectEnv(p.getenv, opts.ForceMode, opts.Color)
	rendered := render.RenderAll(frames, mode, opts.CanvasWidth)
	durations := timing.Durations(frames, opts.FPS)

	p.logger.Debug("starting playback",
		"frames", len(frames),
		"color", mode,
		"loop", opts.Loop,
		"alt_screen", !opts.PreferFlicker,
	)

	defer func() {
		if rerr := p.Restore(); rerr != nil && err == nil {
			err = fmt.Errorf("%w: restore terminal: %w", ErrPlayback, rerr)
		}
	}()

	if err := p.screen.Start(!opts.PreferFlicker); err != nil {
		if errors.Is(err, terminal.ErrClosed) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}

	shown := 0
	for idx := 0; ; {
		if ctx.Err() != nil {
			p.logger.Debug("playback interrupted", "shown", shown)
			return nil
		}

		if err := p.screen.Draw(rendered[idx], opts.PreferFlicker); err != nil {
			if errors.Is(err, terminal.ErrClosed) {
				return nil
			}
			return fmt.Errorf("%w: frame %d: %w", ErrPlayback, idx, err)
		}
		shown++

		if !p.wait(ctx, durations[idx]) {
			p.logger.Debug("playback interrupted", "shown", shown)
			return nil
		}

		idx++
		if idx >= len(rendered) {
			if !opts.Loop {
				p.logger.Debug("playback finished", "shown", shown)
				return nil
			}
			idx = 0
		}
	}
}

// wait blocks for d in naps of at most MaxNap, returning false as soon as
// ctx is done or the screen has been restored.
func (p *Player) wait(ctx context.Context, d time.Duration) bool {
	end := p.now().Add(d)
	for {
		if ctx.Err() != nil || p.screen.Restored() {
			return false
		}
		remaining := end.Sub(p.now())
		if remaining <= 0 {
			return true
		}
		if remaining > MaxNap {
			remaining = MaxNap
		}
		p.sleep(remaining)
	}
}
