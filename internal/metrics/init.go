package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"completed", "failed", "cancelled"} {
		EditJobsTotal.WithLabelValues(status)
		EditJobDuration.WithLabelValues(status)
	}

	for _, status := range []string{"queued", "running", "completed", "failed", "cancelled"} {
		JobsTracked.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error", "skipped"} {
		PublishTotal.WithLabelValues(status)
		PosterGenerationsTotal.WithLabelValues(status)
	}

	for _, result := range []string{"success", "failure", "missing"} {
		APIAuthTotal.WithLabelValues(result)
	}

	volumes := []string{"work", "library", "database", "unknown"}
	for _, op := range []string{"stat", "open", "create"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, op := range []string{"initialize_schema", "insert_edit", "mark_edit_running", "finish_edit", "get_edit", "list_edits", "count_edits", "mark_interrupted"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}
}
