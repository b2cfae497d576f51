// Package handler serves the health endpoint for load balancers and CI.
package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout bounds each dependency probe so a hung database cannot hang
// the health endpoint.
const checkTimeout = 2 * time.Second

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker reports whether the authorization policy evaluates.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler serves GET /api/health. Nil dependencies are skipped, so
// partial wiring in tests and tools still health-checks what exists.
type HealthHandler struct {
	db     Pinger
	policy PolicyChecker
}

// NewHealthHandler returns a handler probing db and policy.
func NewHealthHandler(db Pinger, policy PolicyChecker) *HealthHandler {
	return &HealthHandler{db: db, policy: policy}
}

// Check handles GET /api/health.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), checkTimeout)
	defer cancel()

	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("health: database ping failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failing": "database"})
			return
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			log.Printf("health: policy check failed: %v", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "failing": "policy"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
