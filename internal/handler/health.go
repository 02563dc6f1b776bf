package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"go.uber.org/zap"
)

// Pinger checks database connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports the number of running reminder sessions
type SessionCounter interface {
	Active() int
}

// HealthHandler implements the health check and API document endpoints
type HealthHandler struct {
	db       Pinger
	sessions SessionCounter
	version  string
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, sessions SessionCounter, version string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:       db,
		sessions: sessions,
		version:  version,
		logger:   logger,
	}
}

// GetHealth reports service and database status
func (h *HealthHandler) GetHealth(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		h.logger.Error("health check failed: database unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": "disconnected",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"database":        "connected",
		"service":         "medreminder",
		"version":         h.version,
		"active_sessions": h.sessions.Active(),
	})
}

// GetOpenAPI serves the API document
func (h *HealthHandler) GetOpenAPI(c *gin.Context) {
	c.Data(http.StatusOK, "application/yaml", api.Spec())
}
