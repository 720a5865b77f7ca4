// Package progress maps raw engine progress onto the caller-facing model.
package progress

import (
	"media-editor/internal/edit"
	"media-editor/internal/engine"
)

// Map converts a raw engine sample. The percentage is kept only in the
// available state; unknown states are reported as unavailable.
func Map(state engine.ProgressState, percent int) edit.Progress {
	switch state {
	case engine.ProgressStateNotStarted:
		return edit.Progress{State: edit.ProgressNotStarted}
	case engine.ProgressStateWaitingForAvailability:
		return edit.Progress{State: edit.ProgressWaitingForAvailability}
	case engine.ProgressStateAvailable:
		p := percent
		return edit.Progress{State: edit.ProgressAvailable, Percent: &p}
	default:
		return edit.Progress{State: edit.ProgressUnavailable}
	}
}
