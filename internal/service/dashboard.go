package service

import (
	"context"
	"fmt"
	"time"

	"github.com/vcscsvcscs/medreminder/internal/adherence"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// RecentAchievementLimit is the number of badges shown on the dashboard
const RecentAchievementLimit = 5

// LogHistoryRepositoryInterface defines the log queries behind the dashboard
type LogHistoryRepositoryInterface interface {
	FetchTodayLogs(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]model.MedicationLogWithDetails, error)
	FindByUserID(ctx context.Context, userID string, from, to time.Time) ([]model.MedicationLog, error)
}

// MedicationListerInterface lists a user's medications
type MedicationListerInterface interface {
	FindByUserID(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error)
}

// AchievementRepositoryInterface defines badge storage
type AchievementRepositoryInterface interface {
	FindRecent(ctx context.Context, userID string, limit int) ([]model.Achievement, error)
	Award(ctx context.Context, a *model.Achievement) error
}

// milestone is a badge earned once stats reach a threshold
type milestone struct {
	badge   model.BadgeType
	reached func(model.AdherenceStats) bool
}

var milestones = []milestone{
	{model.BadgeFirstDose, func(s model.AdherenceStats) bool { return s.TakenDoses >= 1 }},
	{model.BadgeWeekStreak, func(s model.AdherenceStats) bool { return s.CurrentStreak >= 7 }},
	{model.BadgeMonthStreak, func(s model.AdherenceStats) bool { return s.CurrentStreak >= 30 }},
	{model.BadgeHundredDoses, func(s model.AdherenceStats) bool { return s.TakenDoses >= 100 }},
}

// DashboardService assembles the dashboard view
type DashboardService struct {
	meds         MedicationListerInterface
	logs         LogHistoryRepositoryInterface
	achievements AchievementRepositoryInterface
	location     *time.Location
	window       time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewDashboardService creates a new DashboardService. Local days are computed in loc.
func NewDashboardService(meds MedicationListerInterface, logs LogHistoryRepositoryInterface, achievements AchievementRepositoryInterface, loc *time.Location, logger *zap.Logger) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		meds:         meds,
		logs:         logs,
		achievements: achievements,
		location:     loc,
		window:       adherence.DefaultWindow,
		logger:       logger,
		now:          time.Now,
	}
}

// GetDashboard returns today's medications, upcoming doses, adherence stats and recent badges
func (s *DashboardService) GetDashboard(ctx context.Context, userID string) (*model.DashboardData, error) {
	now := s.now().In(s.location)
	dayStart, dayEnd := adherence.DayBounds(now)

	meds, err := s.meds.FindByUserID(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load medications: %w", err)
	}

	todayLogs, err := s.logs.FetchTodayLogs(ctx, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's logs: %w", err)
	}

	stats, err := s.stats(ctx, userID, now, dayEnd)
	if err != nil {
		return nil, err
	}

	s.awardMilestones(ctx, userID, stats, now)

	recent, err := s.achievements.FindRecent(ctx, userID, RecentAchievementLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}

	s.logger.Info("dashboard assembled",
		zap.String("user_id", userID),
		zap.Int("medications", len(meds)),
		zap.Int("today_logs", len(todayLogs)),
		zap.Int("adherence_rate", stats.AdherenceRate),
	)

	return &model.DashboardData{
		TodayMedications:   adherence.GroupByMedication(meds, todayLogs),
		UpcomingDoses:      adherence.UpcomingDoses(todayLogs, now),
		AdherenceStats:     stats,
		RecentAchievements: recent,
	}, nil
}

// GetStats returns adherence statistics over the default window
func (s *DashboardService) GetStats(ctx context.Context, userID string) (model.AdherenceStats, error) {
	now := s.now().In(s.location)
	_, dayEnd := adherence.DayBounds(now)
	return s.stats(ctx, userID, now, dayEnd)
}

func (s *DashboardService) stats(ctx context.Context, userID string, now, until time.Time) (model.AdherenceStats, error) {
	history, err := s.logs.FindByUserID(ctx, userID, now.Add(-s.window), until)
	if err != nil {
		return model.AdherenceStats{}, fmt.Errorf("failed to load log history: %w", err)
	}
	return adherence.Compute(history, now, s.window), nil
}

// awardMilestones records every badge the stats qualify for. Failures are logged only.
func (s *DashboardService) awardMilestones(ctx context.Context, userID string, stats model.AdherenceStats, now time.Time) {
	for _, m := range milestones {
		if !m.reached(stats) {
			continue
		}
		a := &model.Achievement{
			UserID:      userID,
			BadgeType:   m.badge,
			EarnedDate:  now,
			StreakCount: stats.CurrentStreak,
		}
		if err := s.achievements.Award(ctx, a); err != nil {
			s.logger.Warn("failed to award badge",
				zap.String("user_id", userID),
				zap.String("badge_type", string(m.badge)),
				zap.Error(err),
			)
		}
	}
}
