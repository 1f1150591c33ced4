package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/devis-eau-api/internal/observability/logger"
	"go.uber.org/zap"
)

// Pinger reports whether the database is reachable
type Pinger func(ctx context.Context) error

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	service string
	ping    Pinger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service string, ping Pinger) *HealthHandler {
	return &HealthHandler{service: service, ping: ping}
}

// Health pings the database pool
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		logger.FromContext(ctx).Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"service":  h.service,
			"database": "down",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  h.service,
		"database": "up",
	})
}
