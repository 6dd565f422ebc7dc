package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dgallion1/meetnotes/internal/granola"
	"github.com/dgallion1/meetnotes/internal/notes"
)

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	var statusErr *granola.StatusError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case notes.IsStructural(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, notes.ErrInvalidInput), errors.Is(err, granola.ErrInvalidURL):
		return http.StatusBadRequest
	case errors.Is(err, granola.ErrNotFound), errors.Is(err, notes.ErrNoContent):
		return http.StatusNotFound
	case errors.Is(err, granola.ErrAuth), granola.IsRetryable(err), errors.As(err, &statusErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= 500 {
		s.log.Error("request failed", "path", r.URL.Path, "status", code, "error", err)
	}
	jsonError(w, err.Error(), code)
}
