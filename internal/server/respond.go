package server

import (
	"encoding/json"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/goliatone/go-personal-budget/storecache"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeValidationError renders ozzo field errors as a field->message map,
// or a single error message for non-field failures.
func writeValidationError(w http.ResponseWriter, err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": fields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// respondError maps access-layer errors to status codes. Store failures
// are logged and surface as opaque 500s.
func respondError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, storecache.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case storecache.IsConflict(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		log.Error("store failure", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
