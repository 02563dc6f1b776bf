package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vcscsvcscs/medreminder/internal/notify"
	"github.com/vcscsvcscs/medreminder/pkg/model"
)

// MockLogRepository is a mock implementation of LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) FetchTodayLogs(ctx context.Context, userID string, dayStart, dayEnd time.Time) ([]model.MedicationLogWithDetails, error) {
	args := m.Called(ctx, userID, dayStart, dayEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicationLogWithDetails), args.Error(1)
}

func (m *MockLogRepository) UpdateStatus(ctx context.Context, logID string, status model.LogStatus, takenAt *time.Time) error {
	args := m.Called(ctx, logID, status, takenAt)
	return args.Error(0)
}

// MockMedicationRepository is a mock implementation of MedicationRepository
type MockMedicationRepository struct {
	mock.Mock
}

func (m *MockMedicationRepository) DecrementQuantity(ctx context.Context, medicationID string) error {
	args := m.Called(ctx, medicationID)
	return args.Error(0)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
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

// MockAuditor is a mock implementation of StatusAuditor
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) LogStatusChange(ctx context.Context, userID, logID string, status model.LogStatus) error {
	args := m.Called(ctx, userID, logID, status)
	return args.Error(0)
}

// fakeNotifier records notifications
type fakeNotifier struct {
	mu         sync.Mutex
	permission notify.Permission
	shown      []shownNotification
	err        error
}

type shownNotification struct {
	title, body, tag string
}

func (n *fakeNotifier) Permission() notify.Permission        { return n.permission }
func (n *fakeNotifier) RequestPermission() notify.Permission { return n.permission }

func (n *fakeNotifier) Notify(title, body, tag string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, shownNotification{title, body, tag})
	return n.err
}

// fakePlayer records playback calls
type fakePlayer struct {
	mu      sync.Mutex
	played  []string
	stops   int
	playing string
	err     error
}

func (p *fakePlayer) PlayLoop(sound notify.Sound) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.played = append(p.played, sound.Key)
	p.playing = sound.Key
	return nil
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	p.playing = ""
}

// fakeClock is a manually advanced Clock
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	done    bool
	stopped bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that became due
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []func()
	for _, t := range c.timers {
		if !t.done && !t.at.After(c.now) {
			t.done = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
}

// pending returns the number of armed timers
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.done {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.stopped = true
	return true
}

// fakeOpener records opened logs and can simulate a ringing session
type fakeOpener struct {
	mu       sync.Mutex
	opened   []string
	settings []model.UserSettings
	ringing  bool
	err      error
}

func (o *fakeOpener) Open(_ context.Context, log model.MedicationLogWithDetails, settings model.UserSettings) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	if o.ringing {
		return ErrAlertActive
	}
	o.ringing = true
	o.opened = append(o.opened, log.ID)
	o.settings = append(o.settings, settings)
	return nil
}

func (o *fakeOpener) dismiss() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ringing = false
}

func (o *fakeOpener) openedIDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.opened...)
}

func pendingLog(id string, scheduled time.Time) model.MedicationLogWithDetails {
	return model.MedicationLogWithDetails{
		MedicationLog: model.MedicationLog{
			ID:            id,
			UserID:        "user-1",
			MedicationID:  "med-" + id,
			ScheduledTime: scheduled,
			Status:        model.LogStatusPending,
		},
		Medication: &model.MedicationSummary{
			ID:     "med-" + id,
			Name:   "Aspirin",
			Dosage: "100mg",
		},
	}
}
