// Package terminal emits the raw ANSI sequences a playback session needs
// and guarantees the terminal is put back the way it was found.
//
// Sequences are written directly; there is no terminfo lookup. Target
// environments are xterm-compatible terminals.
package terminal
