package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// MaxPhotoSize limits medication photo uploads
const MaxPhotoSize = 5 << 20

// MedicationService manages medications and manual dose changes
type MedicationService interface {
	AddMedication(ctx context.Context, userID string, in service.MedicationInput) (*model.Medication, error)
	ListMedications(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error)
	DeactivateMedication(ctx context.Context, userID, medicationID string) error
	UploadPhoto(ctx context.Context, userID, medicationID, contentType string, r io.Reader) (string, error)
	RemovePhoto(ctx context.Context, userID, medicationID string) error
	SkipDose(ctx context.Context, userID, logID string) error
}

// MedicationInfoService explains medications in plain language
type MedicationInfoService interface {
	GetMedicationInfo(ctx context.Context, name string) (*service.MedicationInfo, error)
}

// MedicationHandler implements medication API endpoints
type MedicationHandler struct {
	service MedicationService
	info    MedicationInfoService
	loc     *time.Location
	logger  *zap.Logger
}

// NewMedicationHandler creates a new MedicationHandler. Calendar dates are read in loc.
func NewMedicationHandler(service MedicationService, info MedicationInfoService, loc *time.Location, logger *zap.Logger) *MedicationHandler {
	if loc == nil {
		loc = time.Local
	}
	return &MedicationHandler{
		service: service,
		info:    info,
		loc:     loc,
		logger:  logger,
	}
}

// PostApiV1Medications adds a new medication
func (h *MedicationHandler) PostApiV1Medications(c *gin.Context) {
	var req api.CreateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.StartDate.IsZero() {
		badRequest(c, h.logger, fmt.Errorf("start_date is required"))
		return
	}

	// Convert API request to service input
	in := service.MedicationInput{
		Name:              strings.TrimSpace(req.Name),
		Dosage:            strings.TrimSpace(req.Dosage),
		Frequency:         strings.TrimSpace(req.Frequency),
		StartDate:         dateInLocation(req.StartDate, h.loc),
		ReminderTimes:     []string{},
		Notes:             req.Notes,
		RemainingQuantity: req.RemainingQuantity,
	}
	if req.EndDate != nil {
		end := dateInLocation(*req.EndDate, h.loc)
		in.EndDate = &end
	}
	if req.ReminderTimes != nil {
		in.ReminderTimes = *req.ReminderTimes
	}
	if req.RefillReminderThreshold != nil {
		in.RefillReminderThreshold = *req.RefillReminderThreshold
	}

	med, err := h.service.AddMedication(c.Request.Context(), userID(c), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add medication")
		return
	}

	h.logger.Info("medication added",
		zap.String("medication_id", med.ID),
		zap.String("user_id", med.UserID),
	)
	c.JSON(http.StatusCreated, med)
}

// GetApiV1Medications lists the caller's medications, only active ones unless active=false
func (h *MedicationHandler) GetApiV1Medications(c *gin.Context, params api.GetApiV1MedicationsParams) {
	activeOnly := params.Active == nil || *params.Active

	medications, err := h.service.ListMedications(c.Request.Context(), userID(c), activeOnly)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list medications")
		return
	}
	if medications == nil {
		medications = []model.Medication{}
	}

	c.JSON(http.StatusOK, medications)
}

// DeleteApiV1MedicationsId deactivates a medication. Its history is kept.
func (h *MedicationHandler) DeleteApiV1MedicationsId(c *gin.Context, id types.UUID) {
	if err := h.service.DeactivateMedication(c.Request.Context(), userID(c), uuidToString(id)); err != nil {
		respondError(c, h.logger, err, "Failed to delete medication")
		return
	}
	c.Status(http.StatusNoContent)
}

// PostApiV1MedicationsIdPhoto stores the uploaded "photo" form file
func (h *MedicationHandler) PostApiV1MedicationsIdPhoto(c *gin.Context, id types.UUID) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxPhotoSize+1<<20)

	header, err := c.FormFile("photo")
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if header.Size > MaxPhotoSize {
		badRequest(c, h.logger, fmt.Errorf("photo exceeds %d bytes", MaxPhotoSize))
		return
	}

	file, err := header.Open()
	if err != nil {
		badRequest(c, h.logger, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	url, err := h.service.UploadPhoto(c.Request.Context(), userID(c), uuidToString(id), contentType, file)
	if err != nil {
		respondError(c, h.logger, err, "Failed to upload photo")
		return
	}

	c.JSON(http.StatusOK, api.PhotoResponse{PhotoUrl: url})
}

// DeleteApiV1MedicationsIdPhoto removes the medication photo
func (h *MedicationHandler) DeleteApiV1MedicationsIdPhoto(c *gin.Context, id types.UUID) {
	if err := h.service.RemovePhoto(c.Request.Context(), userID(c), uuidToString(id)); err != nil {
		respondError(c, h.logger, err, "Failed to remove photo")
		return
	}
	c.Status(http.StatusNoContent)
}

// PostApiV1MedicationsLogsIdSkip marks a pending dose as skipped
func (h *MedicationHandler) PostApiV1MedicationsLogsIdSkip(c *gin.Context, id types.UUID) {
	if err := h.service.SkipDose(c.Request.Context(), userID(c), uuidToString(id)); err != nil {
		respondError(c, h.logger, err, "Failed to skip dose")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetApiV1MedicationsInfo returns an AI explanation of the named medication
func (h *MedicationHandler) GetApiV1MedicationsInfo(c *gin.Context, params api.GetApiV1MedicationsInfoParams) {
	info, err := h.info.GetMedicationInfo(c.Request.Context(), params.Name)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get medication info")
		return
	}
	c.JSON(http.StatusOK, info)
}
