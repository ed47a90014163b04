package handler

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker pings one dependency.
type HealthChecker func(ctx context.Context) error

// HealthHandler reports process liveness and optional dependency health.
type HealthHandler struct {
	checks    map[string]HealthChecker
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler. checks may be nil.
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks, startedAt: time.Now().UTC()}
}

// HealthCheck responds with overall status and per-dependency results.
// GET /api/health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]string, len(h.checks))
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	writeJSON(w, status, map[string]any{
		"status":         map[bool]string{true: "ok", false: "degraded"}[status == http.StatusOK],
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"dependencies":   deps,
	})
}
