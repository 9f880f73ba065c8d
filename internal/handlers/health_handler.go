package handlers

import (
	"net/http"

	"churchadmin/internal/health"
)

// HealthHandler serves /health. It answers 503 when the database is down.
type HealthHandler struct {
	checker *health.Checker
	version string
}

func NewHealthHandler(checker *health.Checker, version string) *HealthHandler {
	return &HealthHandler{checker: checker, version: version}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Check(r.Context())
	status.Version = h.version
	code := http.StatusOK
	if status.Status != health.StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}
