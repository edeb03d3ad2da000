package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openlearn/coursegate/app"
	"github.com/openlearn/coursegate/ports"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

// failureReason labels a rejected purchase for metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return "not_found"
	case errors.Is(err, app.ErrAlreadyOwned):
		return "already_owned"
	case errors.Is(err, app.ErrAlreadyEntitled):
		return "already_entitled"
	case errors.Is(err, ports.ErrDuplicateGrant):
		return "duplicate_grant"
	case errors.Is(err, app.ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, app.ErrInvalidCourseKind):
		return "invalid_course_kind"
	default:
		return "error"
	}
}

// writeServiceError maps service sentinels to HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, app.ErrAlreadyOwned):
		writeError(w, http.StatusConflict, "already_owned", err.Error())
	case errors.Is(err, app.ErrAlreadyEntitled):
		writeError(w, http.StatusConflict, "already_entitled", err.Error())
	case errors.Is(err, ports.ErrDuplicateGrant):
		writeError(w, http.StatusConflict, "duplicate_grant", err.Error())
	case errors.Is(err, app.ErrInvalidRecipient):
		writeError(w, http.StatusUnprocessableEntity, "invalid_recipient", err.Error())
	case errors.Is(err, app.ErrInvalidCourseKind):
		writeError(w, http.StatusUnprocessableEntity, "invalid_course_kind", err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}
