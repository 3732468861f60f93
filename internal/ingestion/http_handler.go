package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/rpattn/nwreports/internal/repository"
)

// Handler exposes the reload pipeline and its run history over HTTP.
type Handler struct {
	service *Service
	logRepo repository.IngestionLogRepository
}

// NewHTTPHandler wraps the service and run log.
func NewHTTPHandler(service *Service, logRepo repository.IngestionLogRepository) *Handler {
	return &Handler{service: service, logRepo: logRepo}
}

// reloadWriteMargin covers encoding the summary after a run that used its
// whole deadline.
const reloadWriteMargin = 10 * time.Second

type reloadErrorResponse struct {
	Error      string `json:"error"`
	Stage      Stage  `json:"stage,omitempty"`
	Retryable  bool   `json:"retryable"`
	Stale      bool   `json:"stale"`
	RowsLoaded int    `json:"rowsLoaded"`
}

// Reload runs the pipeline synchronously and reports the summary. The
// connection's write deadline is pushed past the run deadline so the server's
// write timeout cannot cut off the result.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	deadline := time.Now().Add(h.service.Deadline() + reloadWriteMargin)
	if err := rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("[HTTP] failed to extend write deadline for reload: %v", err)
	}

	summary, err := h.service.Run(r.Context())
	if err == nil {
		writeJSON(w, http.StatusOK, summary)
		return
	}

	resp := reloadErrorResponse{Error: err.Error(), RowsLoaded: summary.RowsLoaded}
	status := http.StatusInternalServerError

	var reloadErr *ReloadError
	if errors.As(err, &reloadErr) {
		resp.Stage = reloadErr.Stage
		resp.Retryable = reloadErr.Stage.Retryable()
		resp.Stale = reloadErr.Stale()
		if reloadErr.Stage.Upstream() {
			status = http.StatusBadGateway
		}
	}
	writeJSON(w, status, resp)
}

// ListRuns returns the latest ingestion runs, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, fmt.Sprintf("invalid limit: %q", raw), http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	runs, err := h.logRepo.List(r.Context(), limit)
	if err != nil {
		log.Printf("[HTTP] listing ingestion runs failed: %v", err)
		http.Error(w, "Error retrieving ingestion runs", http.StatusInternalServerError)
		return
	}
	if len(runs) == 0 {
		http.Error(w, "No data available in the database", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
