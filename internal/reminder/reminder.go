// Package reminder runs the per-user medication reminder loop: a poller that
// detects due doses and the alert session that rings for one of them at a time.
package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/vcscsvcscs/medreminder/pkg/model"
)

const (
	// DefaultPollInterval is how often today's logs are re-read
	DefaultPollInterval = 60 * time.Second
	// DefaultAlarmWindow bounds both the trigger window and the ring duration
	DefaultAlarmWindow = 10 * time.Minute
)

var (
	ErrAlertActive   = errors.New("an alert is already ringing")
	ErrNoActiveAlert = errors.New("no alert is ringing")
)

// LogRepository reads and updates medication logs
type LogRepository interface {
	FetchTodayLogs(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]model.MedicationLogWithDetails, error)
	UpdateStatus(ctx context.Context, logID string, status model.LogStatus, takenAt *time.Time) error
}

// MedicationRepository adjusts medication inventory
type MedicationRepository interface {
	DecrementQuantity(ctx context.Context, medicationID string) error
}

// SettingsRepository reads user settings. A nil result without error means
// the user has no stored settings.
type SettingsRepository interface {
	Get(ctx context.Context, userID string) (*model.UserSettings, error)
}

// StatusAuditor records status changes made through an alert
type StatusAuditor interface {
	LogStatusChange(ctx context.Context, userID, logID string, status model.LogStatus) error
}

// Qualifies reports whether a log may open an alert at now:
// it is pending and now - scheduled lies in [0, window).
func Qualifies(status model.LogStatus, scheduled, now time.Time, window time.Duration) bool {
	if status != model.LogStatusPending {
		return false
	}
	elapsed := now.Sub(scheduled)
	return elapsed >= 0 && elapsed < window
}
