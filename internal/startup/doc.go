// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// All configuration is loaded from environment variables via [LoadConfig]:
//
//   - WORK_DIR: where edit outputs are written (default: /work)
//   - LIBRARY_DIR: publish target; publishing is disabled if not writable (default: /library)
//   - DATABASE_DIR: edit history database, required and writable (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: enable the metrics server (default: true)
//   - MAX_CONCURRENT_EDITS: edits run at once (default: one per CPU, at most 4)
//   - PROGRESS_INTERVAL: progress poll interval (default: 250ms)
//   - CLOSE_TIMEOUT: how long closing the editor waits for its worker (default: 1s)
//   - FFMPEG_PATH, FFPROBE_PATH: engine binaries (default: looked up in PATH)
//   - API_TOKEN_HASH: bcrypt hash of the API bearer token; unset disables auth
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: log health check requests (default: true)
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed through
// [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogDatabaseInit]: database timing and edits interrupted by a restart
//   - [LogEngineInit]: FFmpeg availability
//   - [LogHTTPRoutes]: registered routes (debug level)
//   - [LogServerStarted]: endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownStepComplete], [LogShutdownComplete]
package startup
