package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mmynk/splitright/internal/calculator"
	"github.com/mmynk/splitright/internal/service"
	"github.com/mmynk/splitright/internal/storage"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON writes a JSON response with the given status code and data.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": message}.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondServiceError maps a service error to its status and logs it. Internal errors
// are logged in full but reported with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		slog.Error(op+" failed", "path", r.URL.Path, "error", err)
		respondError(w, status, "internal error")
		return
	}
	slog.Warn(op+" rejected", "path", r.URL.Path, "status", status, "error", err)
	respondError(w, status, err.Error())
}

// StatusOf maps a service error to an HTTP status code.
func StatusOf(err error) int {
	var validation *calculator.ValidationError
	var invalidFields validator.ValidationErrors
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.Is(err, service.ErrInvalidArgument), errors.As(err, &invalidFields):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrMemberInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
