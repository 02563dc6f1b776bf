package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime/types"
	"github.com/vcscsvcscs/medreminder/pkg/api"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// ReportService generates and serves adherence reports
type ReportService interface {
	GenerateReport(ctx context.Context, userID string, from, to time.Time) (*model.Report, error)
	GetReport(ctx context.Context, userID, reportID string) (*model.Report, []byte, error)
}

// ReportHandler implements report API endpoints
type ReportHandler struct {
	service ReportService
	loc     *time.Location
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler. Report dates are calendar days in loc.
func NewReportHandler(service ReportService, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{
		service: service,
		loc:     loc,
		logger:  logger,
	}
}

// PostApiV1Reports generates a report covering start_date through end_date inclusive
func (h *ReportHandler) PostApiV1Reports(c *gin.Context) {
	var req api.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, err)
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		badRequest(c, h.logger, fmt.Errorf("start_date and end_date are required"))
		return
	}

	from := dateInLocation(req.StartDate, h.loc)
	to := dateInLocation(req.EndDate, h.loc).AddDate(0, 0, 1)

	report, err := h.service.GenerateReport(c.Request.Context(), userID(c), from, to)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate report")
		return
	}

	h.logger.Info("report generated",
		zap.String("report_id", report.ID),
		zap.String("user_id", report.UserID),
	)

	c.JSON(http.StatusCreated, api.ReportResponse{
		Id:          stringToUUID(report.ID),
		StartDate:   timeToDate(report.DateRangeStart),
		EndDate:     timeToDate(report.DateRangeEnd.AddDate(0, 0, -1)),
		GeneratedAt: timePtr(report.GeneratedAt),
		DownloadUrl: stringPtr("/api/v1/reports/" + report.ID),
	})
}

// GetApiV1ReportsId downloads a report as PDF
func (h *ReportHandler) GetApiV1ReportsId(c *gin.Context, id types.UUID) {
	report, data, err := h.service.GetReport(c.Request.Context(), userID(c), uuidToString(id))
	if err != nil {
		respondError(c, h.logger, err, "Failed to get report")
		return
	}

	filename := fmt.Sprintf("adherence-report-%s-to-%s.pdf",
		report.DateRangeStart.In(h.loc).Format(time.DateOnly),
		report.DateRangeEnd.In(h.loc).AddDate(0, 0, -1).Format(time.DateOnly),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
