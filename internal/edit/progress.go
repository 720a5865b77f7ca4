package edit

import (
	"fmt"
)

// ProgressState is the engine-agnostic progress state reported to callers.
type ProgressState int

const (
	ProgressNotStarted ProgressState = iota
	ProgressWaitingForAvailability
	ProgressAvailable
	ProgressUnavailable
)

var progressStateNames = map[ProgressState]string{
	ProgressNotStarted:             "NOT_STARTED",
	ProgressWaitingForAvailability: "WAITING_FOR_AVAILABILITY",
	ProgressAvailable:              "AVAILABLE",
	ProgressUnavailable:            "UNAVAILABLE",
}

func (s ProgressState) String() string {
	if name, ok := progressStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// MarshalText encodes the state by name so JSON payloads stay readable.
func (s ProgressState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name produced by MarshalText.
func (s *ProgressState) UnmarshalText(text []byte) error {
	for state, name := range progressStateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown progress state %q", text)
}

// Progress is one progress sample. Percent is non-nil if and only if State
// is ProgressAvailable.
type Progress struct {
	State   ProgressState `json:"state"`
	Percent *int          `json:"percent,omitempty"`
}

// NotStarted is the baseline sample emitted before the engine is touched.
func NotStarted() Progress {
	return Progress{State: ProgressNotStarted}
}

func (p Progress) String() string {
	if p.Percent != nil {
		return fmt.Sprintf("%s %d%%", p.State, *p.Percent)
	}
	return p.State.String()
}
