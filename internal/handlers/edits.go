package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"media-editor/internal/database"
	"media-editor/internal/edit"
	"media-editor/internal/jobs"
	"media-editor/internal/logging"
)

// maxRequestBody bounds the JSON body of a submitted edit.
const maxRequestBody = 1 << 20

// SubmitResponse is returned for an accepted edit.
type SubmitResponse struct {
	ID     string      `json:"id"`
	Status jobs.Status `json:"status"`
}

// SubmitEdit queues a new edit.
// POST /api/edits
func (h *Handlers) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	var body EditRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeJSONError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	req, err := body.ToRequest()
	if err != nil {
		writeRequestError(w, err)
		return
	}
	if req.InputPath, err = resolveWorkPath(h.workDir, "input", req.InputPath); err != nil {
		writeRequestError(w, err)
		return
	}
	if req.OutputPath, err = resolveWorkPath(h.workDir, "output", req.OutputPath); err != nil {
		writeRequestError(w, err)
		return
	}

	id, err := h.jobs.Submit(req)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	w.Header().Set("Location", "/api/edits/"+id)
	writeJSONStatus(w, http.StatusAccepted, SubmitResponse{ID: id, Status: jobs.StatusQueued})
}

// ListEdits returns recorded history, or the jobs held in memory with
// ?scope=live.
// GET /api/edits?limit=&offset=&scope=
func (h *Handlers) ListEdits(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("scope") == "live" {
		writeJSONStatus(w, http.StatusOK, map[string]interface{}{"edits": h.jobs.List()})
		return
	}

	limit, err := queryInt(query.Get("limit"), 50)
	if err != nil || limit > 500 {
		writeJSONError(w, "limit must be an integer between 0 and 500", http.StatusBadRequest)
		return
	}
	offset, err := queryInt(query.Get("offset"), 0)
	if err != nil {
		writeJSONError(w, "offset must be a non-negative integer", http.StatusBadRequest)
		return
	}

	records, err := h.jobs.History(r.Context(), limit, offset)
	if err != nil {
		logging.Error("Failed to list edit history: %v", err)
		writeJSONError(w, "Failed to list edits", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []database.EditRecord{}
	}
	writeJSONStatus(w, http.StatusOK, map[string]interface{}{"edits": records})
}

// GetEdit returns the snapshot of one job.
// GET /api/edits/{id}
func (h *Handlers) GetEdit(w http.ResponseWriter, r *http.Request) {
	snap, err := h.jobs.Get(mux.Vars(r)["id"])
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusOK, snap)
}

// CancelEdit requests cancellation of a queued or running job.
// DELETE /api/edits/{id}
func (h *Handlers) CancelEdit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.jobs.Cancel(id); err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusAccepted, map[string]string{"id": id, "status": "cancelling"})
}

// writeRequestError maps service and validation errors to status codes.
func writeRequestError(w http.ResponseWriter, err error) {
	var verr *edit.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, jobs.ErrNotFound):
		writeJSONError(w, "Edit not found", http.StatusNotFound)
	case errors.Is(err, jobs.ErrAlreadyFinished):
		writeJSONError(w, "Edit already finished", http.StatusConflict)
	case errors.Is(err, jobs.ErrShuttingDown):
		writeJSONError(w, "Service is shutting down", http.StatusServiceUnavailable)
	default:
		logging.Error("Edit request failed: %v", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}

func queryInt(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}
