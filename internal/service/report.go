package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/medreminder/internal/adherence"
	"github.com/vcscsvcscs/medreminder/internal/audit"
	"github.com/vcscsvcscs/medreminder/internal/pdf"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// MaxReportRange bounds the period a single report may cover
const MaxReportRange = 366 * 24 * time.Hour

// ReportLogRepositoryInterface loads the dose log for a report period
type ReportLogRepositoryInterface interface {
	FindWithDetails(ctx context.Context, userID string, from, to time.Time) ([]model.MedicationLogWithDetails, error)
}

// ReportRepositoryInterface stores report metadata
type ReportRepositoryInterface interface {
	Create(ctx context.Context, report *model.Report) error
	FindByID(ctx context.Context, userID, reportID string) (*model.Report, error)
}

// ReportStorage stores rendered PDF files
type ReportStorage interface {
	UploadPDF(ctx context.Context, filename string, data []byte) (string, error)
	DownloadPDF(ctx context.Context, blobName string) ([]byte, error)
}

// ReportRenderer renders report data as a PDF
type ReportRenderer interface {
	Generate(data *pdf.ReportData) ([]byte, error)
}

// ReportService manages adherence report generation
type ReportService struct {
	meds     MedicationListerInterface
	logs     ReportLogRepositoryInterface
	reports  ReportRepositoryInterface
	storage  ReportStorage
	renderer ReportRenderer
	auditor  AuditLogger
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	meds MedicationListerInterface,
	logs ReportLogRepositoryInterface,
	reports ReportRepositoryInterface,
	storage ReportStorage,
	renderer ReportRenderer,
	auditor AuditLogger,
	loc *time.Location,
	logger *zap.Logger,
) *ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &ReportService{
		meds:     meds,
		logs:     logs,
		reports:  reports,
		storage:  storage,
		renderer: renderer,
		auditor:  auditor,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateReport renders the adherence report for [from, to), stores the PDF and records it
func (s *ReportService) GenerateReport(ctx context.Context, userID string, from, to time.Time) (*model.Report, error) {
	if !from.Before(to) {
		return nil, invalid("report start must be before its end")
	}
	if to.Sub(from) > MaxReportRange {
		return nil, invalid("report period must not exceed %d days", int(MaxReportRange.Hours()/24))
	}

	s.logger.Info("generating adherence report",
		zap.String("user_id", userID),
		zap.Time("from", from),
		zap.Time("to", to),
	)

	logs, err := s.logs.FindWithDetails(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load medication logs: %w", err)
	}

	meds, err := s.meds.FindByUserID(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}

	plain := make([]model.MedicationLog, len(logs))
	for i, l := range logs {
		plain[i] = l.MedicationLog
	}

	generatedAt := s.now()
	data, err := s.renderer.Generate(&pdf.ReportData{
		UserID:      userID,
		From:        from,
		To:          to,
		GeneratedAt: generatedAt,
		Location:    s.location,
		Stats:       adherence.Compute(plain, to, to.Sub(from)),
		Medications: meds,
		Logs:        logs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	reportID := uuid.New().String()
	blobName, err := s.storage.UploadPDF(ctx, fmt.Sprintf("%s-%s.pdf", userID, reportID), data)
	if err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	report := &model.Report{
		ID:             reportID,
		UserID:         userID,
		DateRangeStart: from,
		DateRangeEnd:   to,
		FilePath:       blobName,
		GeneratedAt:    generatedAt,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}

	if err := s.auditor.LogCreate(ctx, userID, audit.ResourceReport, reportID); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}

	s.logger.Info("adherence report generated",
		zap.String("user_id", userID),
		zap.String("report_id", reportID),
		zap.Int("size_bytes", len(data)),
	)
	return report, nil
}

// GetReport returns a report's metadata and PDF content
func (s *ReportService) GetReport(ctx context.Context, userID, reportID string) (*model.Report, []byte, error) {
	report, err := s.reports.FindByID(ctx, userID, reportID)
	if err != nil {
		return nil, nil, err
	}

	data, err := s.storage.DownloadPDF(ctx, report.FilePath)
	if err != nil {
		s.logger.Error("failed to download report file",
			zap.String("report_id", reportID),
			zap.String("file_path", report.FilePath),
			zap.Error(err),
		)
		return nil, nil, fmt.Errorf("failed to download report: %w", err)
	}

	return report, data, nil
}
