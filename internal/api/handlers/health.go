package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/donaldgifford/concur-accruals/internal/metrics"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a HealthHandler checking deps on readiness. Nil
// entries are skipped.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	metrics.HealthzUp.Set(1)
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz returns 200 if every dependency is reachable, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 if every dependency is reachable, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	for name, dep := range h.deps {
		if dep == nil {
			continue
		}
		if err := dep.Ping(c.Request().Context()); err != nil {
			metrics.ReadyzUp.Set(0)
			return c.JSON(
				http.StatusServiceUnavailable,
				map[string]string{"status": "unavailable", "dependency": name},
			)
		}
	}
	metrics.ReadyzUp.Set(1)
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
