package model

import "time"

// LogStatus represents the status of a scheduled dose
type LogStatus string

const (
	LogStatusPending LogStatus = "pending"
	LogStatusTaken   LogStatus = "taken"
	LogStatusMissed  LogStatus = "missed"
	LogStatusSkipped LogStatus = "skipped"
)

// Final reports whether the status can no longer change
func (s LogStatus) Final() bool {
	return s == LogStatusTaken || s == LogStatusMissed || s == LogStatusSkipped
}

// Medication represents a medication record
type Medication struct {
	ID                      string     `json:"id"`
	UserID                  string     `json:"user_id"`
	Name                    string     `json:"name"`
	Dosage                  string     `json:"dosage"`
	Frequency               string     `json:"frequency"`
	StartDate               time.Time  `json:"start_date"`
	EndDate                 *time.Time `json:"end_date,omitempty"`
	ReminderTimes           []string   `json:"reminder_times"`
	PhotoURL                *string    `json:"photo_url,omitempty"`
	Notes                   *string    `json:"notes,omitempty"`
	RemainingQuantity       *int       `json:"remaining_quantity,omitempty"`
	RefillReminderThreshold int        `json:"refill_reminder_threshold"`
	Active                  bool       `json:"active"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// MedicationSummary is the read-only medication view joined onto a log
type MedicationSummary struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Dosage   string  `json:"dosage"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

// MedicationLog represents one scheduled administration of a medication
type MedicationLog struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	MedicationID  string     `json:"medication_id"`
	ScheduledTime time.Time  `json:"scheduled_time"`
	TakenTime     *time.Time `json:"taken_time,omitempty"`
	Status        LogStatus  `json:"status"`
	Notes         *string    `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// MedicationLogWithDetails is a log joined with its medication summary.
// Medication is nil when the medication no longer resolves.
type MedicationLogWithDetails struct {
	MedicationLog
	Medication *MedicationSummary `json:"medication,omitempty"`
}

// MedicationName returns the joined medication name or an empty string
func (l MedicationLogWithDetails) MedicationName() string {
	if l.Medication == nil {
		return ""
	}
	return l.Medication.Name
}

// MedicationDosage returns the joined medication dosage or an empty string
func (l MedicationLogWithDetails) MedicationDosage() string {
	if l.Medication == nil {
		return ""
	}
	return l.Medication.Dosage
}

// MedicationWithLogs is a medication together with its logs for one day
type MedicationWithLogs struct {
	Medication
	Logs []MedicationLog `json:"logs"`
}

// Default user settings, used when no record exists
const (
	DefaultRingtone      = "default"
	DefaultSnoozeMinutes = 15
)

// UserSettings holds per-user reminder and display preferences
type UserSettings struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	DarkMode      bool      `json:"dark_mode"`
	SoundEnabled  bool      `json:"sound_enabled"`
	Ringtone      string    `json:"ringtone"`
	SnoozeMinutes int       `json:"snooze_minutes"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DefaultSettings returns the settings used for a user without a stored record
func DefaultSettings(userID string) UserSettings {
	return UserSettings{
		UserID:        userID,
		DarkMode:      false,
		SoundEnabled:  true,
		Ringtone:      DefaultRingtone,
		SnoozeMinutes: DefaultSnoozeMinutes,
	}
}

// OrDefault returns a copy of s, or the defaults when s is nil
func (s *UserSettings) OrDefault(userID string) UserSettings {
	if s == nil {
		return DefaultSettings(userID)
	}
	out := *s
	if out.Ringtone == "" {
		out.Ringtone = DefaultRingtone
	}
	if out.SnoozeMinutes <= 0 {
		out.SnoozeMinutes = DefaultSnoozeMinutes
	}
	return out
}

// AdherenceStats is derived from a log history and never stored
type AdherenceStats struct {
	TotalDoses    int `json:"total_doses"`
	TakenDoses    int `json:"taken_doses"`
	MissedDoses   int `json:"missed_doses"`
	SkippedDoses  int `json:"skipped_doses"`
	AdherenceRate int `json:"adherence_rate"`
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// BadgeType identifies an achievement badge
type BadgeType string

const (
	BadgeFirstDose    BadgeType = "first_dose"
	BadgeWeekStreak   BadgeType = "week_streak"
	BadgeMonthStreak  BadgeType = "month_streak"
	BadgePerfectWeek  BadgeType = "perfect_week"
	BadgePerfectMonth BadgeType = "perfect_month"
	BadgeHundredDoses BadgeType = "hundred_doses"
	BadgeEarlyBird    BadgeType = "early_bird"
	BadgeNightOwl     BadgeType = "night_owl"
)

// Achievement represents an earned badge
type Achievement struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	BadgeType   BadgeType `json:"badge_type"`
	EarnedDate  time.Time `json:"earned_date"`
	StreakCount int       `json:"streak_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// DashboardData is everything the dashboard renders
type DashboardData struct {
	TodayMedications   []MedicationWithLogs       `json:"today_medications"`
	UpcomingDoses      []MedicationLogWithDetails `json:"upcoming_doses"`
	AdherenceStats     AdherenceStats             `json:"adherence_stats"`
	RecentAchievements []Achievement              `json:"recent_achievements"`
}

// Report represents a generated adherence report
type Report struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	DateRangeStart time.Time `json:"date_range_start"`
	DateRangeEnd   time.Time `json:"date_range_end"`
	FilePath       string    `json:"file_path"`
	GeneratedAt    time.Time `json:"generated_at"`
	CreatedAt      time.Time `json:"created_at"`
}
