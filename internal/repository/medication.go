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

// MedicationRepository manages medication data
type MedicationRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewMedicationRepository creates a new MedicationRepository
func NewMedicationRepository(db *pgxpool.Pool, logger *zap.Logger) *MedicationRepository {
	return &MedicationRepository{
		db:     db,
		logger: logger,
	}
}

const medicationColumns = `
	id, user_id, name, dosage, frequency,
	start_date, end_date, reminder_times, photo_url, notes,
	remaining_quantity, refill_reminder_threshold, active,
	created_at, updated_at`

func scanMedication(row pgx.Row, med *model.Medication) error {
	return row.Scan(
		&med.ID,
		&med.UserID,
		&med.Name,
		&med.Dosage,
		&med.Frequency,
		&med.StartDate,
		&med.EndDate,
		&med.ReminderTimes,
		&med.PhotoURL,
		&med.Notes,
		&med.RemainingQuantity,
		&med.RefillReminderThreshold,
		&med.Active,
		&med.CreatedAt,
		&med.UpdatedAt,
	)
}

// Create creates a new medication record
func (r *MedicationRepository) Create(ctx context.Context, med *model.Medication) error {
	query := `
		INSERT INTO medications (
			id, user_id, name, dosage, frequency,
			start_date, end_date, reminder_times, photo_url, notes,
			remaining_quantity, refill_reminder_threshold, active,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if med.ReminderTimes == nil {
		med.ReminderTimes = []string{}
	}

	err := r.db.QueryRow(ctx, query,
		med.ID,
		med.UserID,
		med.Name,
		med.Dosage,
		med.Frequency,
		med.StartDate,
		med.EndDate,
		med.ReminderTimes,
		med.PhotoURL,
		med.Notes,
		med.RemainingQuantity,
		med.RefillReminderThreshold,
		med.Active,
	).Scan(&med.CreatedAt, &med.UpdatedAt)

	if err != nil {
		r.logger.Error("failed to create medication",
			zap.Error(err),
			zap.String("medication_id", med.ID),
			zap.String("user_id", med.UserID),
		)
		return fmt.Errorf("failed to create medication: %w", err)
	}

	return nil
}

// FindByUserID retrieves a user's medications, newest first
func (r *MedicationRepository) FindByUserID(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error) {
	query := `SELECT ` + medicationColumns + `
		FROM medications
		WHERE user_id = $1 AND (NOT $2 OR active)
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, activeOnly)
	if err != nil {
		r.logger.Error("failed to find medications", zap.Error(err), zap.String("user_id", userID))
		return nil, fmt.Errorf("failed to find medications: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// FindActive retrieves every active medication across users
func (r *MedicationRepository) FindActive(ctx context.Context) ([]model.Medication, error) {
	query := `SELECT ` + medicationColumns + `
		FROM medications
		WHERE active
		ORDER BY user_id, created_at
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("failed to find active medications", zap.Error(err))
		return nil, fmt.Errorf("failed to find active medications: %w", err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *MedicationRepository) collect(rows pgx.Rows) ([]model.Medication, error) {
	medications := []model.Medication{}
	for rows.Next() {
		var med model.Medication
		if err := scanMedication(rows, &med); err != nil {
			r.logger.Error("failed to scan medication", zap.Error(err))
			continue
		}
		medications = append(medications, med)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("error iterating medications", zap.Error(err))
		return nil, fmt.Errorf("error iterating medications: %w", err)
	}

	return medications, nil
}

// FindByID retrieves a medication by ID
func (r *MedicationRepository) FindByID(ctx context.Context, medicationID string) (*model.Medication, error) {
	query := `SELECT ` + medicationColumns + ` FROM medications WHERE id = $1`

	var med model.Medication
	err := scanMedication(r.db.QueryRow(ctx, query, medicationID), &med)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
		}
		r.logger.Error("failed to find medication", zap.Error(err), zap.String("medication_id", medicationID))
		return nil, fmt.Errorf("failed to find medication: %w", err)
	}

	return &med, nil
}

// Update updates an existing medication record
func (r *MedicationRepository) Update(ctx context.Context, med *model.Medication) error {
	query := `
		UPDATE medications
		SET name = $1, dosage = $2, frequency = $3,
		    start_date = $4, end_date = $5, reminder_times = $6,
		    notes = $7, remaining_quantity = $8, refill_reminder_threshold = $9,
		    active = $10, updated_at = NOW()
		WHERE id = $11
	`

	result, err := r.db.Exec(ctx, query,
		med.Name,
		med.Dosage,
		med.Frequency,
		med.StartDate,
		med.EndDate,
		med.ReminderTimes,
		med.Notes,
		med.RemainingQuantity,
		med.RefillReminderThreshold,
		med.Active,
		med.ID,
	)

	if err != nil {
		r.logger.Error("failed to update medication",
			zap.Error(err),
			zap.String("medication_id", med.ID),
		)
		return fmt.Errorf("failed to update medication: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("medication %s: %w", med.ID, ErrNotFound)
	}

	return nil
}

// Deactivate soft-deletes a medication. Its logs are kept for adherence history.
func (r *MedicationRepository) Deactivate(ctx context.Context, userID, medicationID string) error {
	query := `UPDATE medications SET active = false, updated_at = NOW() WHERE id = $1 AND user_id = $2`

	result, err := r.db.Exec(ctx, query, medicationID, userID)
	if err != nil {
		r.logger.Error("failed to deactivate medication",
			zap.Error(err),
			zap.String("medication_id", medicationID),
		)
		return fmt.Errorf("failed to deactivate medication: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
	}

	return nil
}

// SetPhotoURL stores the public URL of a medication photo. An empty url clears it.
func (r *MedicationRepository) SetPhotoURL(ctx context.Context, userID, medicationID, url string) error {
	query := `UPDATE medications SET photo_url = NULLIF($1, ''), updated_at = NOW() WHERE id = $2 AND user_id = $3`

	result, err := r.db.Exec(ctx, query, url, medicationID, userID)
	if err != nil {
		r.logger.Error("failed to set medication photo",
			zap.Error(err),
			zap.String("medication_id", medicationID),
		)
		return fmt.Errorf("failed to set medication photo: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("medication %s: %w", medicationID, ErrNotFound)
	}

	return nil
}

// DecrementQuantity lowers the remaining quantity by one.
// A NULL or zero quantity is left untouched, so it never goes negative.
func (r *MedicationRepository) DecrementQuantity(ctx context.Context, medicationID string) error {
	query := `
		UPDATE medications
		SET remaining_quantity = remaining_quantity - 1, updated_at = NOW()
		WHERE id = $1 AND remaining_quantity > 0
	`

	result, err := r.db.Exec(ctx, query, medicationID)
	if err != nil {
		r.logger.Error("failed to decrement remaining quantity",
			zap.Error(err),
			zap.String("medication_id", medicationID),
		)
		return fmt.Errorf("failed to decrement remaining quantity: %w", err)
	}

	if result.RowsAffected() == 0 {
		r.logger.Debug("remaining quantity not tracked or exhausted", zap.String("medication_id", medicationID))
	}

	return nil
}
