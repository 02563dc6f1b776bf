package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/medreminder/internal/audit"
	"github.com/vcscsvcscs/medreminder/internal/repository"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// MedicationRepositoryInterface defines the medication storage used by the service
type MedicationRepositoryInterface interface {
	Create(ctx context.Context, med *model.Medication) error
	FindByUserID(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error)
	FindByID(ctx context.Context, medicationID string) (*model.Medication, error)
	Deactivate(ctx context.Context, userID, medicationID string) error
	SetPhotoURL(ctx context.Context, userID, medicationID, url string) error
}

// DoseLogRepositoryInterface defines the log operations behind manual status changes
type DoseLogRepositoryInterface interface {
	FindByID(ctx context.Context, logID string) (*model.MedicationLog, error)
	UpdateStatus(ctx context.Context, logID string, status model.LogStatus, takenAt *time.Time) error
}

// DoseMaterializer creates the pending logs a medication still has on the current day
type DoseMaterializer interface {
	MaterializeMedication(ctx context.Context, med model.Medication, now time.Time) (int, error)
}

// PhotoStorage stores medication photos behind public URLs
type PhotoStorage interface {
	UploadPhoto(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	DeletePhoto(ctx context.Context, photoURL string) error
}

// AuditLogger records changes to user data
type AuditLogger interface {
	LogCreate(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
	LogUpdate(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
	LogDelete(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error
}

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// MedicationInput is a new medication as submitted by the user
type MedicationInput struct {
	Name                    string     `json:"name" validate:"required,max=200"`
	Dosage                  string     `json:"dosage" validate:"required,max=100"`
	Frequency               string     `json:"frequency" validate:"required,max=100"`
	StartDate               time.Time  `json:"start_date" validate:"required"`
	EndDate                 *time.Time `json:"end_date,omitempty"`
	ReminderTimes           []string   `json:"reminder_times" validate:"dive,datetime=15:04"`
	Notes                   *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
	RemainingQuantity       *int       `json:"remaining_quantity,omitempty" validate:"omitempty,min=0"`
	RefillReminderThreshold int        `json:"refill_reminder_threshold" validate:"min=0"`
}

// MedicationService handles medication management business logic
type MedicationService struct {
	repo    MedicationRepositoryInterface
	logs    DoseLogRepositoryInterface
	doses   DoseMaterializer
	photos  PhotoStorage
	auditor AuditLogger
	logger  *zap.Logger
	now     func() time.Time
}

// NewMedicationService creates a new MedicationService
func NewMedicationService(repo MedicationRepositoryInterface, logs DoseLogRepositoryInterface, doses DoseMaterializer, photos PhotoStorage, auditor AuditLogger, logger *zap.Logger) *MedicationService {
	return &MedicationService{
		repo:    repo,
		logs:    logs,
		doses:   doses,
		photos:  photos,
		auditor: auditor,
		logger:  logger,
		now:     time.Now,
	}
}

// AddMedication adds a new medication for a user
func (s *MedicationService) AddMedication(ctx context.Context, userID string, in MedicationInput) (*model.Medication, error) {
	if userID == "" {
		return nil, invalid("user ID is required")
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return nil, invalid("end date must not be before start date")
	}

	med := &model.Medication{
		ID:                      uuid.New().String(),
		UserID:                  userID,
		Name:                    in.Name,
		Dosage:                  in.Dosage,
		Frequency:               in.Frequency,
		StartDate:               in.StartDate,
		EndDate:                 in.EndDate,
		ReminderTimes:           in.ReminderTimes,
		Notes:                   in.Notes,
		RemainingQuantity:       in.RemainingQuantity,
		RefillReminderThreshold: in.RefillReminderThreshold,
		Active:                  true,
	}

	// A course that already ended is stored for history only
	if med.EndDate != nil && dateOf(*med.EndDate).Before(dateOf(s.now())) {
		med.Active = false
	}

	if err := s.repo.Create(ctx, med); err != nil {
		s.logger.Error("failed to add medication",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("medication_name", med.Name),
		)
		return nil, fmt.Errorf("failed to add medication: %w", err)
	}

	s.audit(s.auditor.LogCreate(ctx, userID, audit.ResourceMedication, med.ID))

	// The nightly run only covers medications that exist at midnight
	if created, err := s.doses.MaterializeMedication(ctx, *med, s.now()); err != nil {
		s.logger.Warn("failed to schedule today's doses",
			zap.String("medication_id", med.ID),
			zap.Error(err),
		)
	} else if created > 0 {
		s.logger.Debug("scheduled today's remaining doses",
			zap.String("medication_id", med.ID),
			zap.Int("created", created),
		)
	}

	s.logger.Info("medication added successfully",
		zap.String("medication_id", med.ID),
		zap.String("user_id", userID),
		zap.String("name", med.Name),
	)

	return med, nil
}

// ListMedications retrieves the user's medications, newest first
func (s *MedicationService) ListMedications(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error) {
	meds, err := s.repo.FindByUserID(ctx, userID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	return meds, nil
}

// GetMedication returns one of the user's medications. Other users' medications are reported as not found.
func (s *MedicationService) GetMedication(ctx context.Context, userID, medicationID string) (*model.Medication, error) {
	med, err := s.repo.FindByID(ctx, medicationID)
	if err != nil {
		return nil, err
	}
	if med.UserID != userID {
		return nil, fmt.Errorf("medication %s: %w", medicationID, repository.ErrNotFound)
	}
	return med, nil
}

// DeactivateMedication soft-deletes a medication
func (s *MedicationService) DeactivateMedication(ctx context.Context, userID, medicationID string) error {
	if err := s.repo.Deactivate(ctx, userID, medicationID); err != nil {
		return err
	}

	s.audit(s.auditor.LogDelete(ctx, userID, audit.ResourceMedication, medicationID))
	s.logger.Info("medication deactivated",
		zap.String("user_id", userID),
		zap.String("medication_id", medicationID),
	)
	return nil
}

// UploadPhoto stores a photo for the medication and replaces any previous one
func (s *MedicationService) UploadPhoto(ctx context.Context, userID, medicationID, contentType string, r io.Reader) (string, error) {
	ext, ok := photoExtensions[contentType]
	if !ok {
		return "", invalid("unsupported photo content type %q", contentType)
	}

	med, err := s.GetMedication(ctx, userID, medicationID)
	if err != nil {
		return "", err
	}

	filename := fmt.Sprintf("%s-%s-%d%s", userID, medicationID, s.now().UnixNano(), ext)
	url, err := s.photos.UploadPhoto(ctx, filename, contentType, r)
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	if err := s.repo.SetPhotoURL(ctx, userID, medicationID, url); err != nil {
		if delErr := s.photos.DeletePhoto(ctx, url); delErr != nil {
			s.logger.Warn("failed to clean up orphaned photo", zap.String("url", url), zap.Error(delErr))
		}
		return "", err
	}

	if med.PhotoURL != nil && *med.PhotoURL != "" {
		if err := s.photos.DeletePhoto(ctx, *med.PhotoURL); err != nil {
			s.logger.Warn("failed to delete replaced photo",
				zap.String("medication_id", medicationID),
				zap.Error(err),
			)
		}
	}

	s.audit(s.auditor.LogUpdate(ctx, userID, audit.ResourceMedication, medicationID))
	s.logger.Info("medication photo uploaded",
		zap.String("user_id", userID),
		zap.String("medication_id", medicationID),
	)
	return url, nil
}

// RemovePhoto deletes the medication's photo, if it has one
func (s *MedicationService) RemovePhoto(ctx context.Context, userID, medicationID string) error {
	med, err := s.GetMedication(ctx, userID, medicationID)
	if err != nil {
		return err
	}
	if med.PhotoURL == nil || *med.PhotoURL == "" {
		return nil
	}

	if err := s.photos.DeletePhoto(ctx, *med.PhotoURL); err != nil {
		s.logger.Warn("failed to delete photo blob", zap.String("medication_id", medicationID), zap.Error(err))
	}
	if err := s.repo.SetPhotoURL(ctx, userID, medicationID, ""); err != nil {
		return err
	}

	s.audit(s.auditor.LogUpdate(ctx, userID, audit.ResourceMedication, medicationID))
	return nil
}

// SkipDose marks a pending dose as skipped
func (s *MedicationService) SkipDose(ctx context.Context, userID, logID string) error {
	log, err := s.logs.FindByID(ctx, logID)
	if err != nil {
		return err
	}
	if log.UserID != userID {
		return fmt.Errorf("medication log %s: %w", logID, repository.ErrNotFound)
	}

	if err := s.logs.UpdateStatus(ctx, logID, model.LogStatusSkipped, nil); err != nil {
		return err
	}

	s.audit(s.auditor.LogUpdate(ctx, userID, audit.ResourceMedicationLog, logID))
	s.logger.Info("dose skipped",
		zap.String("user_id", userID),
		zap.String("log_id", logID),
	)
	return nil
}

func (s *MedicationService) audit(err error) {
	if err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}
}
