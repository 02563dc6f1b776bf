package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// SettingsService reads and updates user settings
type SettingsService interface {
	GetSettings(ctx context.Context, userID string) (model.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, in service.SettingsInput) (model.UserSettings, error)
}

// SettingsHandler implements settings API endpoints
type SettingsHandler struct {
	service SettingsService
	logger  *zap.Logger
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger,
	}
}

// GetApiV1Settings returns the caller's settings, defaults when never saved
func (h *SettingsHandler) GetApiV1Settings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, h.logger, err, "Failed to load settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// PutApiV1Settings updates the provided settings fields
func (h *SettingsHandler) PutApiV1Settings(c *gin.Context) {
	var req api.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), userID(c), service.SettingsInput{
		DarkMode:      req.DarkMode,
		SoundEnabled:  req.SoundEnabled,
		Ringtone:      req.Ringtone,
		SnoozeMinutes: req.SnoozeMinutes,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to update settings")
		return
	}

	h.logger.Info("settings updated", zap.String("user_id", userID(c)))
	c.JSON(http.StatusOK, settings)
}
