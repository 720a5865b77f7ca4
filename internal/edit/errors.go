package edit

import (
	"fmt"
)

// ValidationError reports malformed caller input. It is returned before any
// engine work starts and is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrorKind classifies a failed edit.
type ErrorKind int

const (
	// KindStart means the engine could not be built or refused to start.
	KindStart ErrorKind = iota
	// KindEngine means the engine reported a failure while running.
	KindEngine
)

func (k ErrorKind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindEngine:
		return "engine"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the terminal failure of an edit. Cause holds the underlying
// engine error.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// PublishWarning is a non-fatal post-processing failure. The edit itself
// succeeded and its output is still at Path.
type PublishWarning struct {
	Path  string
	Cause error
}

func (w *PublishWarning) Error() string {
	return fmt.Sprintf("saved to %s only: %v", w.Path, w.Cause)
}

func (w *PublishWarning) Unwrap() error {
	return w.Cause
}
