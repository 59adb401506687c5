package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartinvoice/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	checks map[string]port.HealthChecker
}

// NewHealthHandler creates a new HealthHandler. checks maps a backend name to
// its checker; an empty map makes readiness equal to liveness.
func NewHealthHandler(checks map[string]port.HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	for name, check := range h.checks {
		if err := check.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": name + " not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
