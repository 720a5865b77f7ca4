package transcoder

import (
	"strings"
	"testing"

	"media-editor/internal/engine"
)

func TestProgressTracker_States(t *testing.T) {
	tr := newProgressTracker()

	if state, _ := tr.snapshot(); state != engine.ProgressStateNotStarted {
		t.Errorf("before start: state = %v, want not started", state)
	}

	tr.started.Store(true)
	if state, _ := tr.snapshot(); state != engine.ProgressStateWaitingForAvailability {
		t.Errorf("duration pending: state = %v, want waiting", state)
	}

	tr.durationUs.Store(10_000_000)
	if state, _ := tr.snapshot(); state != engine.ProgressStateWaitingForAvailability {
		t.Errorf("no output yet: state = %v, want waiting", state)
	}

	tr.handleLine("out_time_us=2500000")
	state, percent := tr.snapshot()
	if state != engine.ProgressStateAvailable || percent != 25 {
		t.Errorf("got (%v, %d), want (available, 25)", state, percent)
	}

	tr.handleLine("out_time_us=99000000")
	if _, percent := tr.snapshot(); percent != 100 {
		t.Errorf("percent = %d, want clamped to 100", percent)
	}
}

func TestProgressTracker_UnknownDuration(t *testing.T) {
	tr := newProgressTracker()
	tr.started.Store(true)
	tr.durationUs.Store(durationUnknown)
	tr.handleLine("out_time_us=1000")

	if state, _ := tr.snapshot(); state != engine.ProgressStateUnavailable {
		t.Errorf("state = %v, want unavailable", state)
	}
}

func TestProgressTracker_Consume(t *testing.T) {
	input := strings.Join([]string{
		"frame=10",
		"out_time_us=1000000",
		"out_time_ms=1000000",
		"speed=2.0x",
		"progress=continue",
		"garbage line",
		"out_time_us=N/A",
		"frame=20",
		"out_time_ms=3000000",
		"progress=continue",
	}, "\n")

	tr := newProgressTracker()
	tr.started.Store(true)
	tr.durationUs.Store(4_000_000)
	tr.consume(strings.NewReader(input))

	state, percent := tr.snapshot()
	if state != engine.ProgressStateAvailable || percent != 75 {
		t.Errorf("got (%v, %d), want (available, 75)", state, percent)
	}

	tr.handleLine("progress=end")
	if _, percent := tr.snapshot(); percent != 100 {
		t.Errorf("percent after end = %d, want 100", percent)
	}
}
