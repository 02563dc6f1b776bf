package handler

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/medreminder/internal/service"
	"github.com/vcscsvcscs/medreminder/pkg/model"
)

// MockMedicationService is a mock implementation of MedicationService
type MockMedicationService struct {
	mock.Mock
}

func (m *MockMedicationService) AddMedication(ctx context.Context, userID string, in service.MedicationInput) (*model.Medication, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Medication), args.Error(1)
}

func (m *MockMedicationService) ListMedications(ctx context.Context, userID string, activeOnly bool) ([]model.Medication, error) {
	args := m.Called(ctx, userID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Medication), args.Error(1)
}

func (m *MockMedicationService) DeactivateMedication(ctx context.Context, userID, medicationID string) error {
	args := m.Called(ctx, userID, medicationID)
	return args.Error(0)
}

func (m *MockMedicationService) UploadPhoto(ctx context.Context, userID, medicationID, contentType string, r io.Reader) (string, error) {
	args := m.Called(ctx, userID, medicationID, contentType, r)
	return args.String(0), args.Error(1)
}

func (m *MockMedicationService) RemovePhoto(ctx context.Context, userID, medicationID string) error {
	args := m.Called(ctx, userID, medicationID)
	return args.Error(0)
}

func (m *MockMedicationService) SkipDose(ctx context.Context, userID, logID string) error {
	args := m.Called(ctx, userID, logID)
	return args.Error(0)
}

// MockMedicationInfoService is a mock implementation of MedicationInfoService
type MockMedicationInfoService struct {
	mock.Mock
}

func (m *MockMedicationInfoService) GetMedicationInfo(ctx context.Context, name string) (*service.MedicationInfo, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MedicationInfo), args.Error(1)
}

// MockDashboardService is a mock implementation of DashboardService
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) GetDashboard(ctx context.Context, userID string) (*model.DashboardData, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardData), args.Error(1)
}

// MockSettingsService is a mock implementation of SettingsService
type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) GetSettings(ctx context.Context, userID string) (model.UserSettings, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.UserSettings), args.Error(1)
}

func (m *MockSettingsService) UpdateSettings(ctx context.Context, userID string, in service.SettingsInput) (model.UserSettings, error) {
	args := m.Called(ctx, userID, in)
	return args.Get(0).(model.UserSettings), args.Error(1)
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) GenerateReport(ctx context.Context, userID string, from, to time.Time) (*model.Report, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportService) GetReport(ctx context.Context, userID, reportID string) (*model.Report, []byte, error) {
	args := m.Called(ctx, userID, reportID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Report), args.Get(1).([]byte), args.Error(2)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// fakeLogStore backs a real reminder.Manager in tests
type fakeLogStore struct {
	mu        sync.Mutex
	updateErr error
	updates   map[string]model.LogStatus
}

func newFakeLogStore() *fakeLogStore {
	return &fakeLogStore{updates: make(map[string]model.LogStatus)}
}

func (f *fakeLogStore) FetchTodayLogs(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]model.MedicationLogWithDetails, error) {
	return nil, nil
}

func (f *fakeLogStore) UpdateStatus(ctx context.Context, logID string, status model.LogStatus, takenAt *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[logID] = status
	return nil
}

func (f *fakeLogStore) status(logID string) model.LogStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[logID]
}

type noSettings struct{}

func (noSettings) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	return nil, nil
}
