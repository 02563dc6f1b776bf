package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// AchievementRepository manages earned badges
type AchievementRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db *pgxpool.Pool, logger *zap.Logger) *AchievementRepository {
	return &AchievementRepository{
		db:     db,
		logger: logger,
	}
}

// FindRecent returns up to limit achievements, most recently earned first
func (r *AchievementRepository) FindRecent(ctx context.Context, userID string, limit int) ([]model.Achievement, error) {
	query := `
		SELECT id, user_id, badge_type, earned_date, streak_count, created_at
		FROM achievements
		WHERE user_id = $1
		ORDER BY earned_date DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("failed to find achievements", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find achievements: %w", err)
	}
	defer rows.Close()

	achievements := []model.Achievement{}
	for rows.Next() {
		var a model.Achievement
		err := rows.Scan(
			&a.ID,
			&a.UserID,
			&a.BadgeType,
			&a.EarnedDate,
			&a.StreakCount,
			&a.CreatedAt,
		)
		if err != nil {
			r.logger.Error("failed to scan achievement", zap.Error(err))
			continue
		}
		achievements = append(achievements, a)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating achievements", zap.Error(err))
		return nil, fmt.Errorf("error iterating achievements: %w", err)
	}

	return achievements, nil
}

// Award records a badge, or refreshes its streak count if it was already earned
func (r *AchievementRepository) Award(ctx context.Context, a *model.Achievement) error {
	query := `
		INSERT INTO achievements (user_id, badge_type, earned_date, streak_count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, badge_type) DO UPDATE
		SET streak_count = EXCLUDED.streak_count
		RETURNING id, earned_date, created_at
	`

	err := r.db.QueryRow(ctx, query, a.UserID, a.BadgeType, a.EarnedDate, a.StreakCount).
		Scan(&a.ID, &a.EarnedDate, &a.CreatedAt)
	if err != nil {
		r.logger.Error("failed to award achievement",
			zap.Error(err),
			zap.String("user_id", a.UserID),
			zap.String("badge_type", string(a.BadgeType)),
		)
		return fmt.Errorf("failed to award achievement: %w", err)
	}

	return nil
}
