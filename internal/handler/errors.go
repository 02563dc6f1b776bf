package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/medreminder/internal/reminder"
	"github.com/vcscsvcscs/medreminder/internal/repository"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"go.uber.org/zap"
)

// errStatusWriteFailed marks a status change the alert could not store
var errStatusWriteFailed = errors.New("status write failed")

// errorStatus maps a service error to its HTTP status and error code
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, repository.ErrLogNotPending):
		return http.StatusConflict, "LOG_NOT_PENDING"
	case errors.Is(err, reminder.ErrNoActiveAlert):
		return http.StatusConflict, "NO_ACTIVE_ALERT"
	case errors.Is(err, reminder.ErrAlertActive):
		return http.StatusConflict, "ALERT_ACTIVE"
	case errors.Is(err, errStatusWriteFailed):
		return http.StatusBadGateway, "STATUS_WRITE_FAILED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// respondError logs err and writes the standard error body with the error text as details
func respondError(c *gin.Context, logger *zap.Logger, err error, message string) {
	status, code := errorStatus(err)

	fields := []zap.Field{
		zap.Error(err),
		zap.String("user_id", userID(c)),
		zap.Int("status", status),
	}
	if status >= http.StatusInternalServerError {
		logger.Error(message, fields...)
	} else {
		logger.Info(message, fields...)
	}

	c.JSON(status, api.ErrorResponse{
		Code:    code,
		Message: message,
		Details: stringPtr(err.Error()),
	})
}

// badRequest writes a VALIDATION_ERROR for a body or form that could not be read
func badRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request body",
		Details: stringPtr(err.Error()),
	})
}
