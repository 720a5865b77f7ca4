package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"media-editor/internal/middleware"
)

// Router builds the application router.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))

	// No auth
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.AuthMiddleware)
	api.HandleFunc("/edits", h.SubmitEdit).Methods(http.MethodPost).Name("submit-edit")
	api.HandleFunc("/edits", h.ListEdits).Methods(http.MethodGet).Name("list-edits")
	api.HandleFunc("/edits/{id}", h.GetEdit).Methods(http.MethodGet).Name("get-edit")
	api.HandleFunc("/edits/{id}", h.CancelEdit).Methods(http.MethodDelete).Name("cancel-edit")

	return r
}
