// Package metrics provides Prometheus instrumentation for the media-editor service.
//
// All metrics are prefixed with "media_editor_" and registered with the default
// registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Edit Metrics
//
// Recorded by the orchestrator for every job it runs:
//   - EditJobsTotal: Counter by terminal status (completed/failed/cancelled)
//   - EditJobDuration: Histogram of job duration by terminal status
//   - EditJobsInProgress: Gauge of jobs currently inside the engine
//   - EditFallbacksTotal: Counter of engine fallbacks
//   - EditProgressPollsTotal: Counter of progress polls
//   - EditStartFailuresTotal: Counter of jobs the engine could not start
//
// ## Job Service Metrics
//
// Updated by the [Collector] from a [StatsProvider]:
//   - JobsQueued, JobsTracked, JobsRecordedTotal
//
// ## Publish Metrics
//
//   - PublishTotal, PublishDuration, PosterGenerationsTotal
//
// ## Database and Filesystem Metrics
//
//   - DBQueryTotal, DBQueryDuration, DBConnectionsOpen
//   - FilesystemRetry*: retry behaviour of library writes
//
// ## Memory and Auth Metrics
//
//   - MemoryUsageRatio, MemoryPaused, MemoryPausesTotal: admission backpressure
//   - APIAuthTotal: bearer token checks by result (success/failure/missing)
//
// # Usage
//
// Mount promhttp.Handler() on the metrics server:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// Edit success ratio:
//
//	sum(rate(media_editor_edit_jobs_total{status="completed"}[1h])) /
//	sum(rate(media_editor_edit_jobs_total[1h]))
package metrics
