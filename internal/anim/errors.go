package anim

import "errors"

// Loader errors.
var (
	// ErrNotFound indicates the path does not resolve to a regular file.
	ErrNotFound = errors.New("anim: animation file not found")

	// ErrRead indicates an I/O failure reading an existing file.
	ErrRead = errors.New("anim: failed to read animation file")

	// ErrParse indicates malformed or structurally invalid document content.
	ErrParse = errors.New("anim: failed to parse animation document")
)

// LoadError wraps a loader failure with the path it concerns.
type LoadError struct {
	Path string
	Kind error
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return e.Kind.Error() + ": " + e.Path
	}
	return e.Kind.Error() + ": " + e.Path + ": " + e.Err.Error()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
