package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"warbler/internal/httputil"
	"warbler/internal/logging"
)

// Pinger is satisfied by *sqlx.DB and the Redis client wrapper.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	checks map[string]Pinger
	logger *zap.Logger
}

// NewHealthHandler reports on every named dependency in checks.
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logging.WithComponent("health"),
	}
}

// Health pings each dependency
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	for name, check := range h.checks {
		if err := check.PingContext(ctx); err != nil {
			h.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body[name] = "down"
			continue
		}
		body[name] = "up"
	}

	httputil.WriteJSON(w, status, body)
}
