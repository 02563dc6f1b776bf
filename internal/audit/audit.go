package audit

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// OperationType represents the type of operation performed
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

// ResourceType represents the type of resource being changed
type ResourceType string

const (
	ResourceMedication    ResourceType = "medication"
	ResourceMedicationLog ResourceType = "medication_log"
	ResourceSettings      ResourceType = "user_settings"
	ResourceReport        ResourceType = "report"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID             string
	UserID         string
	OperationType  OperationType
	ResourceType   ResourceType
	ResourceID     string
	Timestamp      time.Time
	IPAddress      string
	UserAgent      string
	AdditionalData map[string]interface{}
}

// Logger handles audit logging
type Logger struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewLogger creates a new audit logger
func NewLogger(db *pgxpool.Pool, logger *zap.Logger) *Logger {
	return &Logger{
		db:     db,
		logger: logger,
	}
}

// Log creates an audit log entry
func (l *Logger) Log(ctx context.Context, entry AuditLog) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	l.logger.Info("Audit log entry",
		zap.String("user_id", entry.UserID),
		zap.String("operation", string(entry.OperationType)),
		zap.String("resource_type", string(entry.ResourceType)),
		zap.String("resource_id", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
	)

	query := `
		INSERT INTO audit_logs (
			user_id, operation_type, resource_type, resource_id,
			timestamp, ip_address, user_agent, additional_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := l.db.Exec(ctx, query,
		entry.UserID,
		entry.OperationType,
		entry.ResourceType,
		entry.ResourceID,
		entry.Timestamp,
		entry.IPAddress,
		entry.UserAgent,
		entry.AdditionalData,
	)

	if err != nil {
		l.logger.Error("Failed to write audit log to database",
			zap.Error(err),
			zap.String("user_id", entry.UserID),
			zap.String("operation", string(entry.OperationType)),
			zap.String("resource_type", string(entry.ResourceType)),
		)
		return err
	}

	return nil
}

// LogStatusChange records a dose status change made from a ringing alert
func (l *Logger) LogStatusChange(ctx context.Context, userID, logID string, status model.LogStatus) error {
	return l.Log(ctx, AuditLog{
		UserID:         userID,
		OperationType:  OperationUpdate,
		ResourceType:   ResourceMedicationLog,
		ResourceID:     logID,
		AdditionalData: map[string]interface{}{"status": string(status), "source": "alert"},
	})
}

// LogCreate logs a CREATE operation
func (l *Logger) LogCreate(ctx context.Context, userID string, resourceType ResourceType, resourceID string) error {
	return l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: OperationCreate,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
	})
}

// LogUpdate logs an UPDATE operation
func (l *Logger) LogUpdate(ctx context.Context, userID string, resourceType ResourceType, resourceID string) error {
	return l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: OperationUpdate,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
	})
}

// LogDelete logs a DELETE operation
func (l *Logger) LogDelete(ctx context.Context, userID string, resourceType ResourceType, resourceID string) error {
	return l.Log(ctx, AuditLog{
		UserID:        userID,
		OperationType: OperationDelete,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
	})
}
