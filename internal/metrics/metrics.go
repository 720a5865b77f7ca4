package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_editor_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_editor_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Editor metrics
var (
	EditJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_edit_jobs_total",
			Help: "Total number of edit jobs by terminal status",
		},
		[]string{"status"}, // "completed", "failed", "cancelled"
	)

	EditJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_editor_edit_job_duration_seconds",
			Help:    "Edit job duration in seconds by terminal status",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"status"},
	)

	EditJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_edit_jobs_in_progress",
			Help: "Number of edit jobs currently running in the engine",
		},
	)

	EditFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_editor_edit_fallbacks_total",
			Help: "Total number of engine fallbacks applied to edit jobs",
		},
	)

	EditProgressPollsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_editor_edit_progress_polls_total",
			Help: "Total number of engine progress polls",
		},
	)

	EditStartFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_editor_edit_start_failures_total",
			Help: "Total number of edit jobs the engine failed to start",
		},
	)
)

// Job service metrics
var (
	JobsQueued = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_jobs_queued",
			Help: "Number of submitted jobs waiting for an edit slot",
		},
	)

	JobsTracked = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_editor_jobs_tracked",
			Help: "Number of jobs held in memory by status",
		},
		[]string{"status"},
	)

	JobsRecordedTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_jobs_recorded",
			Help: "Number of jobs recorded in the history database",
		},
	)
)

// Publish metrics
var (
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_publish_total",
			Help: "Total number of output publish attempts",
		},
		[]string{"status"}, // "success", "error", "skipped"
	)

	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_editor_publish_duration_seconds",
			Help:    "Time spent publishing an output to the library",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	PosterGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_poster_generations_total",
			Help: "Total number of poster thumbnail generations",
		},
		[]string{"status"},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_filesystem_retry_attempts_total",
			Help: "Total number of filesystem operation retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that failed after all retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_filesystem_stale_errors_total",
			Help: "Total number of stale file handle errors",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_editor_filesystem_retry_duration_seconds",
			Help:    "Filesystem operation duration including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// Memory backpressure metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_memory_usage_ratio",
			Help: "Heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_editor_memory_paused",
			Help: "1 while new edits are held back by memory pressure",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_editor_memory_pauses_total",
			Help: "Times admission of new edits was paused by memory pressure",
		},
	)
)

// API authentication metrics
var (
	APIAuthTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_editor_api_auth_total",
			Help: "Bearer token checks on the job API",
		},
		[]string{"result"},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_editor_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
