package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"churchadmin/internal/enhance"
	"churchadmin/internal/security"
	"churchadmin/internal/service"
	"churchadmin/internal/validation"
)

type errorBody struct {
	Error  string                       `json:"error"`
	Fields []validation.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		slog.Error(logMsg, "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: userMsg})
}

// respondServiceError maps a service error onto a status code. action
// describes what failed ("list members") and is only logged.
func respondServiceError(w http.ResponseWriter, err error, action string) {
	var fields validation.Errors
	var field validation.ValidationError
	var upstream *enhance.UpstreamError

	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Fields: fields})
	case errors.As(err, &field):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Validation failed", Fields: []validation.ValidationError{field}})
	case errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrEventNotFound),
		errors.Is(err, service.ErrPresetNotFound),
		errors.Is(err, service.ErrMinuteNotFound),
		errors.Is(err, service.ErrRecordNotFound),
		errors.Is(err, service.ErrConcernNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, capitalize(err.Error()), "", nil)
	case errors.Is(err, service.ErrOverrideExists),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrLastAdmin):
		respondWithError(w, http.StatusConflict, capitalize(err.Error()), "", nil)
	case errors.Is(err, service.ErrNotAnOccurrence),
		errors.Is(err, service.ErrNothingToEnhance),
		errors.Is(err, enhance.ErrNoNotes):
		respondWithError(w, http.StatusBadRequest, capitalize(err.Error()), "", nil)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrMissingToken):
		respondWithError(w, http.StatusUnauthorized, capitalize(err.Error()), "", nil)
	case errors.Is(err, service.ErrNotInvited):
		respondWithError(w, http.StatusForbidden, capitalize(err.Error()), "", nil)
	case errors.As(err, &upstream):
		status, msg := enhance.StatusFor(upstream.Status)
		respondWithError(w, status, msg, "failed to "+action, err)
	default:
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to "+action, err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return fmt.Sprintf("%c%s", c-'a'+'A', s[1:])
	}
	return s
}
