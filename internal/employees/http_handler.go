package employees

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/rpattn/nwreports/internal/domain"
)

// Handler exposes employee inserts as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a POST endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	var employee domain.Employee
	if err := json.NewDecoder(r.Body).Decode(&employee); err != nil {
		http.Error(w, fmt.Sprintf("invalid payload: %v", err), http.StatusBadRequest)
		return
	}

	err := h.service.Create(r.Context(), employee)
	var validationErr *ValidationFailedError
	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, validationErr.Result)
	case err != nil:
		log.Printf("[HTTP] employee insert failed: %v", err)
		http.Error(w, "Error inserting employee data", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "Data inserted successfully"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
