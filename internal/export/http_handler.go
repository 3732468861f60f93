package export

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/rpattn/nwreports/internal/repository"
)

type Handler struct {
	service *Service
}

func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

// ServeHTTP answers GET /export/{report}?format=csv|xlsx.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report := r.PathValue("report")
	if report == "" {
		http.Error(w, "missing report name", http.StatusBadRequest)
		return
	}
	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, err := h.service.Render(r.Context(), report, format)
	switch {
	case errors.Is(err, repository.ErrUnknownReport):
		http.Error(w, fmt.Sprintf("unknown report %q", report), http.StatusNotFound)
		return
	case err != nil:
		log.Printf("[HTTP] export of %s failed: %v", report, err)
		http.Error(w, fmt.Sprintf("Error exporting %s", report), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Data)
}
