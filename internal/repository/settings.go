package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// SettingsRepository manages the per-user settings record
type SettingsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *pgxpool.Pool, logger *zap.Logger) *SettingsRepository {
	return &SettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns the user's settings, or nil without error when none are stored
func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	query := `
		SELECT id, user_id, dark_mode, sound_enabled, ringtone, snooze_minutes, updated_at
		FROM user_settings
		WHERE user_id = $1
	`

	var s model.UserSettings
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.ID,
		&s.UserID,
		&s.DarkMode,
		&s.SoundEnabled,
		&s.Ringtone,
		&s.SnoozeMinutes,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("failed to get settings", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return &s, nil
}

// Upsert creates or replaces the user's settings
func (r *SettingsRepository) Upsert(ctx context.Context, s *model.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, dark_mode, sound_enabled, ringtone, snooze_minutes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET dark_mode = EXCLUDED.dark_mode,
		    sound_enabled = EXCLUDED.sound_enabled,
		    ringtone = EXCLUDED.ringtone,
		    snooze_minutes = EXCLUDED.snooze_minutes,
		    updated_at = NOW()
		RETURNING id, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		s.UserID,
		s.DarkMode,
		s.SoundEnabled,
		s.Ringtone,
		s.SnoozeMinutes,
	).Scan(&s.ID, &s.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to upsert settings", zap.Error(err), zap.String("user_id", s.UserID))
		return fmt.Errorf("failed to upsert settings: %w", err)
	}

	return nil
}
