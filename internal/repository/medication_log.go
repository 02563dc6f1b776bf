package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// MedicationLogRepository manages scheduled dose records
type MedicationLogRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicationLogRepository creates a new MedicationLogRepository
func NewMedicationLogRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicationLogRepository {
	return &MedicationLogRepository{
		db:     db,
		logger: logger,
	}
}

// FetchTodayLogs returns the user's logs for one local day, each joined with its
// medication summary, ordered by scheduled time.
func (r *MedicationLogRepository) FetchTodayLogs(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]model.MedicationLogWithDetails, error) {
	return r.FindWithDetails(ctx, userID, dayStart, dayEnd)
}

// FindWithDetails returns the user's logs scheduled in [from, to) joined with their
// medication summary. Summary is nil when the medication no longer resolves.
func (r *MedicationLogRepository) FindWithDetails(ctx context.Context, userID string, from, to time.Time) ([]model.MedicationLogWithDetails, error) {
	query := `
		SELECT
			l.id, l.user_id, l.medication_id, l.scheduled_time, l.taken_time,
			l.status, l.notes, l.created_at,
			m.id, m.name, m.dosage, m.photo_url
		FROM medication_logs l
		LEFT JOIN medications m ON m.id = l.medication_id
		WHERE l.user_id = $1 AND l.scheduled_time >= $2 AND l.scheduled_time < $3
		ORDER BY l.scheduled_time, l.id
	`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		r.logger.Error("failed to fetch medication logs", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to fetch medication logs: %w", err)
	}
	defer rows.Close()

	logs := []model.MedicationLogWithDetails{}
	for rows.Next() {
		var (
			log      model.MedicationLogWithDetails
			medID    *string
			medName  *string
			medDose  *string
			medPhoto *string
		)
		err := rows.Scan(
			&log.ID,
			&log.UserID,
			&log.MedicationID,
			&log.ScheduledTime,
			&log.TakenTime,
			&log.Status,
			&log.Notes,
			&log.CreatedAt,
			&medID,
			&medName,
			&medDose,
			&medPhoto,
		)
		if err != nil {
			r.logger.Error("failed to scan medication log", zap.Error(err))
			continue
		}

		if medID != nil {
			log.Medication = &model.MedicationSummary{
				ID:       *medID,
				Name:     deref(medName),
				Dosage:   deref(medDose),
				PhotoURL: medPhoto,
			}
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medication logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating medication logs: %w", err)
	}

	return logs, nil
}

// FindByUserID returns the user's logs scheduled in [from, to), newest first
func (r *MedicationLogRepository) FindByUserID(ctx context.Context, userID string, from, to time.Time) ([]model.MedicationLog, error) {
	query := `
		SELECT id, user_id, medication_id, scheduled_time, taken_time, status, notes, created_at
		FROM medication_logs
		WHERE user_id = $1 AND scheduled_time >= $2 AND scheduled_time < $3
		ORDER BY scheduled_time DESC
	`

	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		r.logger.Error("failed to find medication logs", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find medication logs: %w", err)
	}
	defer rows.Close()

	logs := []model.MedicationLog{}
	for rows.Next() {
		var log model.MedicationLog
		if err := scanLog(rows, &log); err != nil {
			r.logger.Error("failed to scan medication log", zap.Error(err))
			continue
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medication logs", zap.Error(err))
		return nil, fmt.Errorf("error iterating medication logs: %w", err)
	}

	return logs, nil
}

// FindByID retrieves a log by ID
func (r *MedicationLogRepository) FindByID(ctx context.Context, logID string) (*model.MedicationLog, error) {
	query := `
		SELECT id, user_id, medication_id, scheduled_time, taken_time, status, notes, created_at
		FROM medication_logs
		WHERE id = $1
	`

	var log model.MedicationLog
	if err := scanLog(r.db.QueryRow(ctx, query, logID), &log); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medication log %s: %w", logID, ErrNotFound)
		}
		r.logger.Error("failed to find medication log", zap.Error(err), zap.String("log_id", logID))
		return nil, fmt.Errorf("failed to find medication log: %w", err)
	}

	return &log, nil
}

// UpdateStatus moves a pending log to status. Logs that already left pending are
// immutable and yield ErrLogNotPending.
func (r *MedicationLogRepository) UpdateStatus(ctx context.Context, logID string, status model.LogStatus, takenAt *time.Time) error {
	if !status.Final() {
		return fmt.Errorf("invalid target status %q", status)
	}

	query := `
		UPDATE medication_logs
		SET status = $1, taken_time = $2
		WHERE id = $3 AND status = 'pending'
	`

	result, err := r.db.Exec(ctx, query, status, takenAt, logID)
	if err != nil {
		r.logger.Error("failed to update medication log status",
			zap.Error(err),
			zap.String("log_id", logID),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("failed to update medication log status: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, err := r.FindByID(ctx, logID); err != nil {
			return err
		}
		return fmt.Errorf("medication log %s: %w", logID, ErrLogNotPending)
	}

	return nil
}

// CreatePending inserts a pending log unless one already exists for the same
// medication and scheduled time. It reports whether a row was inserted.
func (r *MedicationLogRepository) CreatePending(ctx context.Context, log *model.MedicationLog) (bool, error) {
	query := `
		INSERT INTO medication_logs (id, user_id, medication_id, scheduled_time, status, created_at)
		VALUES ($1, $2, $3, $4, 'pending', NOW())
		ON CONFLICT (medication_id, scheduled_time) DO NOTHING
	`

	result, err := r.db.Exec(ctx, query, log.ID, log.UserID, log.MedicationID, log.ScheduledTime)
	if err != nil {
		r.logger.Error("failed to create pending log",
			zap.Error(err),
			zap.String("medication_id", log.MedicationID),
			zap.Time("scheduled_time", log.ScheduledTime),
		)
		return false, fmt.Errorf("failed to create pending log: %w", err)
	}

	log.Status = model.LogStatusPending
	return result.RowsAffected() == 1, nil
}

func scanLog(row pgx.Row, log *model.MedicationLog) error {
	return row.Scan(
		&log.ID,
		&log.UserID,
		&log.MedicationID,
		&log.ScheduledTime,
		&log.TakenTime,
		&log.Status,
		&log.Notes,
		&log.CreatedAt,
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
