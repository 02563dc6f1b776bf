package reminder

import (
	"context"
	"sync"

	"github.com/vcscsvcscs/medreminder/internal/notify"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// ManagerDeps are shared by every session a Manager starts
type ManagerDeps struct {
	Logs        LogRepository
	Medications MedicationRepository
	Settings    SettingsRepository
	Auditor     StatusAuditor
	Notifier    notify.Notifier
	Player      notify.Player
	Clock       Clock
}

type running struct {
	session *Session
	poller  *Poller
	cancel  context.CancelFunc
	done    chan struct{}

	// pinned sessions outlive their streams until Stop
	pinned  bool
	streams int
}

// Manager owns one poller and alert session per signed-in user
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*running
	deps     ManagerDeps
	cfg      PollerConfig
	logger   *zap.Logger
}

// NewManager creates a session manager
func NewManager(deps ManagerDeps, cfg PollerConfig, logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*running),
		deps:     deps,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start returns the user's session, starting its poller if it is not running.
// The session keeps running until Stop, even after every stream detaches.
func (m *Manager) Start(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.startLocked(userID)
	r.pinned = true
	return r.session
}

// Attach returns the user's session for one event stream, starting it if needed.
// Calling detach ends a session that was only kept alive by streams.
func (m *Manager) Attach(userID string) (*Session, func()) {
	m.mu.Lock()
	r := m.startLocked(userID)
	r.streams++
	m.mu.Unlock()

	var once sync.Once
	return r.session, func() {
		once.Do(func() { m.detach(userID, r) })
	}
}

func (m *Manager) detach(userID string, r *running) {
	m.mu.Lock()
	r.streams--
	if r.streams > 0 || r.pinned || m.sessions[userID] != r {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, userID)
	m.mu.Unlock()

	m.shutdown(userID, r)
}

func (m *Manager) startLocked(userID string) *running {
	if r, ok := m.sessions[userID]; ok {
		return r
	}

	session := NewSession(userID, m.cfg.AlarmWindow, SessionDeps{
		Logs:        m.deps.Logs,
		Medications: m.deps.Medications,
		Auditor:     m.deps.Auditor,
		Notifier:    m.deps.Notifier,
		Player:      m.deps.Player,
		Clock:       m.deps.Clock,
		Logger:      m.logger,
	})
	poller := NewPoller(userID, m.deps.Logs, m.deps.Settings, session, m.deps.Clock, m.cfg, m.logger)

	ctx, cancel := context.WithCancel(context.Background())
	r := &running{
		session: session,
		poller:  poller,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	m.sessions[userID] = r

	go func() {
		defer close(r.done)
		poller.Run(ctx)
	}()

	m.logger.Info("reminder session started", zap.String("user_id", userID))
	return r
}

// Session returns the user's running session
func (m *Manager) Session(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	return r.session, true
}

// Stop ends the user's session. The poller stops before any ringing alert is silenced.
func (m *Manager) Stop(userID string) bool {
	m.mu.Lock()
	r, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.shutdown(userID, r)
	return true
}

func (m *Manager) shutdown(userID string, r *running) {
	r.cancel()
	<-r.done
	r.session.Close()

	m.logger.Info("reminder session stopped", zap.String("user_id", userID))
}

// StopAll ends every running session
func (m *Manager) StopAll() {
	m.mu.Lock()
	users := make([]string, 0, len(m.sessions))
	for userID := range m.sessions {
		users = append(users, userID)
	}
	m.mu.Unlock()

	for _, userID := range users {
		m.Stop(userID)
	}
}

// Active returns the number of running sessions
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ApplySettings pushes saved settings to the user's running session, if any
func (m *Manager) ApplySettings(userID string, settings model.UserSettings) bool {
	session, ok := m.Session(userID)
	if !ok {
		return false
	}
	session.ApplySettings(settings)
	return true
}
