package terminal

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// ErrClosed is returned by Draw after the screen has been restored.
var ErrClosed = errors.New("terminal: screen already restored")

// Screen owns the terminal state of one playback session.
// Draw and Restore may be called from different goroutines.
type Screen struct {
	mu  sync.Mutex
	dst io.Writer
	out *bufio.Writer

	started   bool
	altScreen bool
	restored  bool
}

// NewScreen wraps w. Nothing is written until Start.
func NewScreen(w io.Writer) *Screen {
	return &Screen{dst: w, out: bufio.NewWriterSize(w, 64*1024)}
}

// Start hides the cursor and, when altScreen is set, switches to the
// alternate screen buffer and clears it.
func (s *Screen) Start(altScreen bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return ErrClosed
	}
	if s.started {
		return nil
	}
	s.started = true

	s.out.Write(csiCursorHide)
	if altScreen {
		s.out.Write(csiAltScreenEnter)
		s.out.Write(csiClear)
		s.altScreen = true
	}
	return s.out.Flush()
}

// Draw writes one frame and flushes. With fullClear the screen is cleared
// first; otherwise the cursor is homed and the frame overwrites in place.
func (s *Screen) Draw(frame string, fullClear bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored {
		return ErrClosed
	}
	if fullClear {
		s.out.Write(csiClear)
	} else {
		s.out.Write(csiHome)
	}
	s.out.WriteString(frame)
	return s.out.Flush()
}

// Restore shows the cursor and leaves the alternate screen if it was
// entered. Safe to call multiple times; only the first call writes.
func (s *Screen) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.restored || !s.started {
		s.restored = true
		return nil
	}
	s.restored = true

	// Drop any partial frame left by a failed write.
	s.out.Reset(s.dst)
	s.out.Write(csiCursorShow)
	if s.altScreen {
		s.out.Write(csiAltScreenExit)
	}
	return s.out.Flush()
}

// Restored reports whether Restore has run.
func (s *Screen) Restored() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restored
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Size returns the terminal dimensions of w, or ok=false when unknown.
func Size(w io.Writer) (width, height int, ok bool) {
	f, isFile := w.(*os.File)
	if !isFile {
		return 0, 0, false
	}
	width, height, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}
