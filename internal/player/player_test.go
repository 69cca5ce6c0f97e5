package player_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/asciiplay/internal/anim"
	"github.com/san-kum/asciiplay/internal/palette"
	"github.com/san-kum/asciiplay/internal/player"
	"github.com/san-kum/asciiplay/internal/terminal"
)

type fakeClock struct {
	t       time.Time
	naps    []time.Duration
	onSleep func(elapsed time.Duration)
	start   time.Time
}

func newFakeClock() *fakeClock {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &fakeClock{t: t0, start: t0}
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(d time.Duration) {
	c.naps = append(c.naps, d)
	c.t = c.t.Add(d)
	if c.onSleep != nil {
		c.onSleep(c.t.Sub(c.start))
	}
}

func (c *fakeClock) total() time.Duration {
	var sum time.Duration
	for _, n := range c.naps {
		sum += n
	}
	return sum
}

type failingWriter struct {
	buf bytes.Buffer
}

func (w *failingWriter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("boom")) {
		return 0, errors.New("write: broken pipe")
	}
	return w.buf.Write(p)
}

func noEnv(string) string { return "" }

func lines(ls ...string) anim.Frame {
	return anim.Frame{Lines: ls}
}

var _ = Describe("Player", func() {
	var (
		out    *bytes.Buffer
		logs   *bytes.Buffer
		clock  *fakeClock
		p      *player.Player
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		logs = &bytes.Buffer{}
		clock = newFakeClock()
		ctx, cancel = context.WithCancel(context.Background())
		p = player.New(out,
			player.WithLogger(log.New(logs)),
			player.WithEnv(noEnv),
			player.WithClock(clock.now, clock.sleep),
		)
	})

	AfterEach(func() {
		cancel()
	})

	Context("with no frames", func() {
		It("logs a diagnostic and writes nothing", func() {
			Expect(p.Play(ctx, nil, player.Options{Loop: true})).To(Succeed())
			Expect(out.Len()).To(BeZero())
			Expect(logs.String()).To(ContainSubstring("no frames found in animation"))
		})

		It("still reports the diagnostic at a quiet log level", func() {
			quiet := log.New(logs)
			quiet.SetLevel(log.ErrorLevel)
			qp := player.New(out, player.WithLogger(quiet), player.WithEnv(noEnv))

			Expect(qp.Play(ctx, []anim.Frame{}, player.Options{})).To(Succeed())
			Expect(logs.String()).To(ContainSubstring("no frames found in animation"))
		})
	})

	Context("with a single 50ms frame and no loop", func() {
		frames := []anim.Frame{{Lines: []string{"hi"}, Duration: 50, HasDuration: true}}

		It("draws once, waits 50ms in short naps and restores", func() {
			Expect(p.Play(ctx, frames, player.Options{})).To(Succeed())

			want := terminal.HideCursor + terminal.AltScreenEnter + terminal.ClearHome +
				terminal.Home + "hi" +
				terminal.ShowCursor + terminal.AltScreenExit
			Expect(out.String()).To(Equal(want))

			Expect(clock.total()).To(Equal(50 * time.Millisecond))
			for _, n := range clock.naps {
				Expect(n).To(BeNumerically("<=", player.MaxNap))
			}
		})

		It("takes about 50ms on the real clock", func() {
			rp := player.New(out, player.WithLogger(log.New(logs)), player.WithEnv(noEnv))
			start := time.Now()
			Expect(rp.Play(ctx, frames, player.Options{})).To(Succeed())
			elapsed := time.Since(start)
			Expect(elapsed).To(BeNumerically(">=", 50*time.Millisecond))
			Expect(elapsed).To(BeNumerically("<", 2*time.Second))
			Expect(strings.Count(out.String(), "hi")).To(Equal(1))
		})
	})

	Context("with prefer flicker", func() {
		It("clears before every frame and never uses the alternate screen", func() {
			frames := []anim.Frame{lines("a"), lines("b")}
			Expect(p.Play(ctx, frames, player.Options{PreferFlicker: true})).To(Succeed())

			want := terminal.HideCursor +
				terminal.ClearHome + "a" +
				terminal.ClearHome + "b" +
				terminal.ShowCursor
			Expect(out.String()).To(Equal(want))
			Expect(out.String()).NotTo(ContainSubstring(terminal.AltScreenEnter))
		})
	})

	Context("color selection", func() {
		red := anim.Frame{
			Lines:      []string{"x"},
			Foreground: map[anim.Cell]string{{Row: 0, Col: 0}: "#ff0000"},
		}

		It("uses a forced 256-color mode", func() {
			opts := player.Options{Color: true, ForceMode: palette.ANSI256}
			Expect(p.Play(ctx, []anim.Frame{red}, opts)).To(Succeed())
			Expect(out.String()).To(ContainSubstring("\x1b[38;5;196mx\x1b[0m"))
		})

		It("detects truecolor from the environment", func() {
			env := func(k string) string {
				if k == "COLORTERM" {
					return "truecolor"
				}
				return ""
			}
			tp := player.New(out,
				player.WithLogger(log.New(logs)),
				player.WithEnv(env),
				player.WithClock(clock.now, clock.sleep),
			)
			Expect(tp.Play(ctx, []anim.Frame{red}, player.Options{Color: true})).To(Succeed())
			Expect(out.String()).To(ContainSubstring("\x1b[38;2;255;0;0mx\x1b[0m"))
		})

		It("emits no colors when color is disabled", func() {
			opts := player.Options{Color: false, ForceMode: palette.TrueColor}
			Expect(p.Play(ctx, []anim.Frame{red}, opts)).To(Succeed())
			Expect(out.String()).NotTo(ContainSubstring("\x1b[38;"))
		})

		It("pads to the canvas width", func() {
			opts := player.Options{Color: true, ForceMode: palette.TrueColor, CanvasWidth: 4}
			Expect(p.Play(ctx, []anim.Frame{lines("ab")}, opts)).To(Succeed())
			Expect(out.String()).To(ContainSubstring(terminal.Home + "ab  " + terminal.ShowCursor))
		})
	})

	Context("when looping", func() {
		It("wraps around until the context is cancelled", func() {
			frames := []anim.Frame{
				{Lines: []string{"f0"}, Duration: 10, HasDuration: true},
				{Lines: []string{"f1"}, Duration: 10, HasDuration: true},
			}
			clock.onSleep = func(elapsed time.Duration) {
				if elapsed >= 45*time.Millisecond {
					cancel()
				}
			}

			Expect(p.Play(ctx, frames, player.Options{Loop: true})).To(Succeed())
			Expect(strings.Count(out.String(), "f0")).To(Equal(3))
			Expect(strings.Count(out.String(), "f1")).To(Equal(2))
			Expect(out.String()).To(HaveSuffix(terminal.ShowCursor + terminal.AltScreenExit))
		})

		It("uses the fps override for frames without a duration", func() {
			clock.onSleep = func(elapsed time.Duration) {
				if elapsed >= 200*time.Millisecond {
					cancel()
				}
			}
			Expect(p.Play(ctx, []anim.Frame{lines("z")}, player.Options{Loop: true, FPS: 10})).To(Succeed())
			Expect(strings.Count(out.String(), "z")).To(Equal(2))
		})
	})

	Context("when restored from another path", func() {
		It("stops drawing and restores exactly once", func() {
			frames := []anim.Frame{lines("a"), lines("b")}
			clock.onSleep = func(time.Duration) {
				Expect(p.Restore()).To(Succeed())
			}

			Expect(p.Play(ctx, frames, player.Options{Loop: true})).To(Succeed())
			Expect(strings.Count(out.String(), terminal.ShowCursor)).To(Equal(1))
			Expect(out.String()).NotTo(ContainSubstring("b"))
			Expect(clock.naps).To(HaveLen(1))
		})

		It("does nothing when cancelled before the first frame", func() {
			cancel()
			Expect(p.Play(ctx, []anim.Frame{lines("a")}, player.Options{})).To(Succeed())
			Expect(out.String()).To(Equal(terminal.HideCursor + terminal.AltScreenEnter + terminal.ClearHome +
				terminal.ShowCursor + terminal.AltScreenExit))
		})
	})

	Context("when the output fails", func() {
		It("restores the terminal and reports a playback error", func() {
			w := &failingWriter{}
			fp := player.New(w,
				player.WithLogger(log.New(logs)),
				player.WithEnv(noEnv),
				player.WithClock(clock.now, clock.sleep),
			)

			err := fp.Play(ctx, []anim.Frame{lines("boom")}, player.Options{})
			Expect(err).To(MatchError(player.ErrPlayback))
			Expect(w.buf.String()).To(HaveSuffix(terminal.ShowCursor + terminal.AltScreenExit))
		})
	})
})
