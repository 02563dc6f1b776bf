package service

import (
	"context"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/medreminder/internal/audit"
	"github.com/vcscsvcscs/medreminder/pkg/model"
)

// MockMedicationRepository is a mock implementation of the medication repository
type MockMedicationRepository struct {
	mock.Mock
}

func (m *MockMedicationRepository) Create(ctx context.Context, med *model.Medication) error {
	args := m.Called(ctx, med)
	return args.Error(0)
}

func (m *MockMedicationRepository) FindByUserID(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medication), args.Error(1)
}

func (m *MockMedicationRepository) FindByID(ctx context.Context, medicationID string) (*model.Medication, error) {
	args := m.Called(ctx, medicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medication), args.Error(1)
}

func (m *MockMedicationRepository) FindActive(ctx context.Context) ([]model.Medication, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medication), args.Error(1)
}

func (m *MockMedicationRepository) Deactivate(ctx context.Context, userID, medicationID string) error {
	args := m.Called(ctx, userID, medicationID)
	return args.Error(0)
}

func (m *MockMedicationRepository) SetPhotoURL(ctx context.Context, userID, medicationID, url string) error {
	args := m.Called(ctx, userID, medicationID, url)
	return args.Error(0)
}

// MockLogRepository is a mock implementation of the medication log repository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) FindByID(ctx context.Context, logID string) (*model.MedicationLog, error) {
	args := m.Called(ctx, logID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MedicationLog), args.Error(1)
}

func (m *MockLogRepository) UpdateStatus(ctx context.Context, logID string, status model.LogStatus, takenAt *time.Time) error {
	args := m.Called(ctx, logID, status, takenAt)
	return args.Error(0)
}

func (m *MockLogRepository) FetchTodayLogs(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]model.MedicationLogWithDetails, error) {
	args := m.Called(ctx, userID, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationLogWithDetails), args.Error(1)
}

func (m *MockLogRepository) FindWithDetails(ctx context.Context, userID string, from, to time.Time) ([]model.MedicationLogWithDetails, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationLogWithDetails), args.Error(1)
}

func (m *MockLogRepository) FindByUserID(ctx context.Context, userID string, from, to time.Time) ([]model.MedicationLog, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationLog), args.Error(1)
}

func (m *MockLogRepository) CreatePending(ctx context.Context, log *model.MedicationLog) (bool, error) {
	args := m.Called(ctx, log)
	return args.Bool(0), args.Error(1)
}

type MockDoseMaterializer struct {
	mock.Mock
}

func (m *MockDoseMaterializer) MaterializeMedication(ctx context.Context, med model.Medication, now time.Time) (int, error) {
	args := m.Called(ctx, med, now)
	return args.Int(0), args.Error(1)
}

// MockSettingsRepository is a mock implementation of the settings repository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettings), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, s *model.UserSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockAchievementRepository is a mock implementation of the achievement repository
type MockAchievementRepository struct {
	mock.Mock
}

func (m *MockAchievementRepository) FindRecent(ctx context.Context, userID string, limit int) ([]model.Achievement, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Achievement), args.Error(1)
}

func (m *MockAchievementRepository) Award(ctx context.Context, a *model.Achievement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockReportRepository is a mock implementation of the report repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, report *model.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) FindByID(ctx context.Context, userID, reportID string) (*model.Report, error) {
	args := m.Called(ctx, userID, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

// MockAuditLogger is a mock implementation of AuditLogger
type MockAuditLogger struct {
	mock.Mock
}

func (m *MockAuditLogger) LogCreate(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error {
	args := m.Called(ctx, userID, resourceType, resourceID)
	return args.Error(0)
}

func (m *MockAuditLogger) LogUpdate(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error {
	args := m.Called(ctx, userID, resourceType, resourceID)
	return args.Error(0)
}

func (m *MockAuditLogger) LogDelete(ctx context.Context, userID string, resourceType audit.ResourceType, resourceID string) error {
	args := m.Called(ctx, userID, resourceType, resourceID)
	return args.Error(0)
}

// MockChatCompleter is a mock implementation of ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) Complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

// MockSettingsApplier is a mock implementation of SettingsApplier
type MockSettingsApplier struct {
	mock.Mock
}

func (m *MockSettingsApplier) ApplySettings(userID string, settings model.UserSettings) bool {
	args := m.Called(userID, settings)
	return args.Bool(0)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
