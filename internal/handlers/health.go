package handlers

import (
	"net/http"
	"runtime"
	"time"

	"media-editor/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// JobCounts summarizes the jobs held in memory.
type JobCounts struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	Recorded  int `json:"recorded"`
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status          string    `json:"status"`
	Ready           bool      `json:"ready"`
	Version         string    `json:"version"`
	Uptime          string    `json:"uptime"`
	EngineAvailable bool      `json:"engineAvailable"`
	Jobs            JobCounts `json:"jobs"`

	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the service. A missing engine
// degrades the service but does not make it unhealthy.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.jobs.GetStats()
	available := h.engineAvailable()

	response := HealthResponse{
		Status:          statusHealthy,
		Ready:           available,
		Version:         startup.Version,
		Uptime:          time.Since(h.startTime).Round(time.Second).String(),
		EngineAvailable: available,
		Jobs: JobCounts{
			Queued:    stats.Queued,
			Running:   stats.Running,
			Completed: stats.Completed,
			Failed:    stats.Failed,
			Cancelled: stats.Cancelled,
			Recorded:  stats.Recorded,
		},
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if !available {
		response.Status = statusDegraded
	}

	writeJSONStatus(w, http.StatusOK, response)
}

// LivenessCheck always returns 200 while the server is running.
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{"status": "alive"})
	}
}

// ReadinessCheck returns 200 only when edits can start.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, _ *http.Request) {
	if h.engineAvailable() {
		writeJSONStatus(w, http.StatusOK, map[string]string{"status": "ready"})
		return
	}
	writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
}
