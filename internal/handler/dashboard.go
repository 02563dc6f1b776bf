package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// DashboardService assembles the dashboard view
type DashboardService interface {
	GetDashboard(ctx context.Context, userID string) (*model.DashboardData, error)
}

// DashboardHandler implements dashboard API endpoints
type DashboardHandler struct {
	service DashboardService
	logger  *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1Dashboard returns today's medications, upcoming doses, adherence stats and recent badges
func (h *DashboardHandler) GetApiV1Dashboard(c *gin.Context) {
	data, err := h.service.GetDashboard(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, data)
}
