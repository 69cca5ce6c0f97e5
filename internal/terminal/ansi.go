package terminal

// ANSI/VT100 control sequences used during playback
var (
	csiClear = []byte("\x1b[2J\x1b[H")
	csiHome  = []byte("\x1b[H")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")
)

// Exported string forms for callers composing or asserting on output.
const (
	Reset          = "\x1b[0m"
	ClearHome      = "\x1b[2J\x1b[H"
	Home           = "\x1b[H"
	HideCursor     = "\x1b[?25l"
	ShowCursor     = "\x1b[?25h"
	AltScreenEnter = "\x1b[?1049h"
	AltScreenExit  = "\x1b[?1049l"
)
