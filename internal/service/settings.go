package service

import (
	"context"
	"fmt"

	"github.com/vcscsvcscs/medreminder/internal/audit"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// SettingsRepositoryInterface defines settings storage
type SettingsRepositoryInterface interface {
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
	Upsert(ctx context.Context, s *model.UserSettings) error
}

// SettingsApplier receives settings as soon as they are saved
type SettingsApplier interface {
	ApplySettings(userID string, settings model.UserSettings) bool
}

// SettingsInput is a partial settings update; nil fields keep their current value
type SettingsInput struct {
	DarkMode      *bool   `json:"dark_mode,omitempty"`
	SoundEnabled  *bool   `json:"sound_enabled,omitempty"`
	Ringtone      *string `json:"ringtone,omitempty" validate:"omitempty,ringtone"`
	SnoozeMinutes *int    `json:"snooze_minutes,omitempty" validate:"omitempty,min=1,max=120"`
}

// SettingsService reads and updates per-user reminder preferences
type SettingsService struct {
	repo    SettingsRepositoryInterface
	applier SettingsApplier
	auditor AuditLogger
	logger  *zap.Logger
}

// NewSettingsService creates a new SettingsService. applier may be nil.
func NewSettingsService(repo SettingsRepositoryInterface, applier SettingsApplier, auditor AuditLogger, logger *zap.Logger) *SettingsService {
	return &SettingsService{
		repo:    repo,
		applier: applier,
		auditor: auditor,
		logger:  logger,
	}
}

// GetSettings returns the user's settings, or the defaults when none are stored
func (s *SettingsService) GetSettings(ctx context.Context, userID string) (model.UserSettings, error) {
	stored, err := s.repo.Get(ctx, userID)
	if err != nil {
		return model.UserSettings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	return stored.OrDefault(userID), nil
}

// UpdateSettings merges in into the stored settings and pushes the result to a running reminder session
func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, in SettingsInput) (model.UserSettings, error) {
	if err := validateStruct(in); err != nil {
		return model.UserSettings{}, err
	}

	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return model.UserSettings{}, err
	}

	if in.DarkMode != nil {
		settings.DarkMode = *in.DarkMode
	}
	if in.SoundEnabled != nil {
		settings.SoundEnabled = *in.SoundEnabled
	}
	if in.Ringtone != nil {
		settings.Ringtone = *in.Ringtone
	}
	if in.SnoozeMinutes != nil {
		settings.SnoozeMinutes = *in.SnoozeMinutes
	}
	settings.UserID = userID

	if err := s.repo.Upsert(ctx, &settings); err != nil {
		s.logger.Error("failed to save settings", zap.Error(err), zap.String("user_id", userID))
		return model.UserSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}

	if err := s.auditor.LogUpdate(ctx, userID, audit.ResourceSettings, userID); err != nil {
		s.logger.Warn("failed to write audit log", zap.Error(err))
	}

	if s.applier != nil && s.applier.ApplySettings(userID, settings) {
		s.logger.Debug("settings applied to running reminder session", zap.String("user_id", userID))
	}

	return settings, nil
}
