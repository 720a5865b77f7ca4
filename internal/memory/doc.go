// Package memory configures the Go memory limit for containers and provides
// a monitor that holds back new edits while the heap is under pressure.
//
// ConfigureFromEnv sets GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO. The
// default ratio leaves half of the container to ffmpeg child processes.
//
// A Monitor samples heap usage. Above the pause watermark Wait blocks until
// usage drops below the resume watermark, the context ends or the monitor
// stops. Running edits are never interrupted.
package memory
