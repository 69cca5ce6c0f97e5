package terminal

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestScreenAltSession(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	if err := s.Start(true); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := s.Draw("frame", false); err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if err := s.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	want := HideCursor + AltScreenEnter + ClearHome + Home + "frame" + ShowCursor + AltScreenExit
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestScreenFullClearSession(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	s.Start(false)
	s.Draw("a", true)
	s.Draw("b", true)
	s.Restore()

	want := HideCursor + ClearHome + "a" + ClearHome + "b" + ShowCursor
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
	if strings.Contains(buf.String(), AltScreenExit) {
		t.Error("alternate screen exited without being entered")
	}
}

func TestScreenRestoreIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)
	s.Start(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Restore()
		}()
	}
	wg.Wait()

	if n := strings.Count(buf.String(), ShowCursor); n != 1 {
		t.Errorf("expected one cursor show, got %d", n)
	}
	if !s.Restored() {
		t.Error("expected restored state")
	}
	if err := s.Draw("late", false); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after restore, got %v", err)
	}
}

func TestScreenRestoreBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf)

	if err := s.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
	if err := s.Start(true); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

type failWriter struct {
	fail bool
	buf  bytes.Buffer
}

func (w *failWriter) Write(p []byte) (int, error) {
	if w.fail {
		return 0, errors.New("broken pipe")
	}
	return w.buf.Write(p)
}

func TestScreenRestoreAfterWriteFailure(t *testing.T) {
	w := &failWriter{}
	s := NewScreen(w)
	s.Start(true)

	w.fail = true
	if err := s.Draw("x", false); err == nil {
		t.Fatal("expected draw error")
	}

	w.fail = false
	if err := s.Restore(); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.HasSuffix(w.buf.String(), ShowCursor+AltScreenExit) {
		t.Errorf("expected restore sequences, got %q", w.buf.String())
	}
}

func TestIsTerminalNonFile(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("buffer is not a terminal")
	}
	if _, _, ok := Size(&bytes.Buffer{}); ok {
		t.Error("buffer has no size")
	}
}
