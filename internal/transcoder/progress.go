package transcoder

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"media-editor/internal/engine"
)

// Duration states held in progressTracker.durationUs.
const (
	durationPending int64 = 0
	durationUnknown int64 = -1
)

// progressTracker follows ffmpeg's -progress output. All fields are atomics
// because the engine is polled from a different goroutine than the reader.
type progressTracker struct {
	started    atomic.Bool
	durationUs atomic.Int64
	outTimeUs  atomic.Int64
	ended      atomic.Bool
}

func newProgressTracker() *progressTracker {
	t := &progressTracker{}
	t.outTimeUs.Store(-1)
	return t
}

// consume reads key=value progress lines until r is exhausted.
func (t *progressTracker) consume(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		t.handleLine(scanner.Text())
	}
}

func (t *progressTracker) handleLine(line string) {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok {
		return
	}

	switch key {
	// out_time_ms is also in microseconds.
	case "out_time_us", "out_time_ms":
		us, err := strconv.ParseInt(value, 10, 64)
		if err == nil && us >= 0 {
			t.outTimeUs.Store(us)
		}
	case "progress":
		if value == "end" {
			t.ended.Store(true)
		}
	}
}

// snapshot reports the raw engine progress.
func (t *progressTracker) snapshot() (engine.ProgressState, int) {
	if !t.started.Load() {
		return engine.ProgressStateNotStarted, 0
	}

	duration := t.durationUs.Load()
	switch {
	case duration == durationUnknown:
		return engine.ProgressStateUnavailable, 0
	case duration == durationPending:
		return engine.ProgressStateWaitingForAvailability, 0
	}

	if t.ended.Load() {
		return engine.ProgressStateAvailable, 100
	}

	out := t.outTimeUs.Load()
	if out < 0 {
		return engine.ProgressStateWaitingForAvailability, 0
	}

	percent := int(out * 100 / duration)
	return engine.ProgressStateAvailable, min(max(percent, 0), 100)
}
