package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that pins the edit worker count.
const OverrideEnv = "EDIT_WORKERS"

// Count returns the number of concurrent edits to allow. It follows the
// container CPU limit via GOMAXPROCS.
//
// The multiplier scales the CPU count: 1.0 suits software encoding, which
// saturates a core per edit, while larger values suit hardware encoders that
// mostly wait on the device.
//
// limit caps the result; 0 means no cap. EDIT_WORKERS overrides the
// computed value but is still capped.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// ForCPU returns one worker per available CPU, capped at limit.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForEncoder returns the worker count for edits whose encoding runs off
// the CPU (two per CPU), capped at limit.
func ForEncoder(limit int) int {
	return Count(2.0, limit)
}
