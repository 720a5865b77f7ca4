// Package main is the entry point of the media-editor service.
//
// The service accepts video edit requests over HTTP, runs each one through a
// single-pass FFmpeg engine and reports progress, fallbacks and results while
// the job runs. Finished edits are recorded in SQLite and can optionally be
// copied to a media library.
//
// # Application Lifecycle
//
//  1. Memory Configuration: Sets GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO
//  2. Configuration Loading: Reads environment variables and validates directories
//  3. Database Initialization: Opens SQLite and fails edits left over from a previous run
//  4. Component Initialization:
//     - Transcoder: FFmpeg engine factory
//     - Orchestrator: Drives engines on a single worker goroutine
//     - Publisher: Copies finished outputs to the library (if enabled)
//     - Memory Monitor: Holds back new edits under heap pressure
//     - Job Service: Runs edits with a concurrency limit
//     - Metrics Collector: Updates Prometheus gauges every minute
//  5. HTTP Server Setup: Registers routes and middleware and starts the server
//  6. Graceful Shutdown: Handles SIGINT/SIGTERM and cancels running edits
//
// # HTTP Server
//
// The application runs two HTTP servers:
//
//  1. Main Server (default port 8080):
//     - Job API under /api/edits (bearer token when API_TOKEN_HASH is set)
//     - Health probes: /health, /healthz, /livez, /readyz
//     - Build information: /version
//
//  2. Metrics Server (default port 9090, optional):
//     - Prometheus metrics endpoint (/metrics)
//     - Health check endpoint (/health)
//
// # Environment Variables
//
//   - WORK_DIR: Directory holding edit inputs and outputs (default: /work)
//   - LIBRARY_DIR: Directory finished edits are published to (default: /library)
//   - DATABASE_DIR: Directory for the SQLite database (default: /database)
//   - PORT: Main HTTP server port (default: 8080)
//   - METRICS_PORT: Metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable metrics server (default: true)
//   - LOG_HEALTH_CHECKS: Log probe requests (default: true)
//   - MAX_CONCURRENT_EDITS: Edits run at once (default: derived from CPU count)
//   - PROGRESS_INTERVAL: Engine progress poll interval (default: 250ms)
//   - CLOSE_TIMEOUT: Orchestrator worker drain timeout (default: 1s)
//   - FFMPEG_PATH, FFPROBE_PATH: Engine binaries (default: looked up on PATH)
//   - API_TOKEN_HASH: bcrypt hash of the API bearer token
//   - LOG_LEVEL: Logging level (debug/info/warn/error)
//   - EDIT_WORKERS: Overrides the derived worker count
//
// # Graceful Shutdown
//
//  1. Stop accepting new HTTP requests
//  2. Cancel queued and running edits and wait for them to resolve
//  3. Close the orchestrator
//  4. Stop the metrics collector and memory monitor
//  5. Shutdown metrics server (if running)
//  6. Close database connections
//
// # Build Requirements
//
// SQLite is linked through CGO. FFmpeg and ffprobe must be installed at
// runtime; without them the service starts degraded and every edit fails to
// start.
//
//	go build -o media-editor ./cmd/media-editor
//
// # Related Packages
//
//   - [media-editor/internal/editor]: Edit orchestration
//   - [media-editor/internal/jobs]: Job tracking and concurrency
//   - [media-editor/internal/handlers]: HTTP request handlers
//   - [media-editor/internal/transcoder]: FFmpeg engine
//   - [media-editor/internal/database]: Edit history
//   - [media-editor/internal/startup]: Configuration and initialization
package main
