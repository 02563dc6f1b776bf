package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vcscsvcscs/medreminder/internal/notify"
	"github.com/vcscsvcscs/medreminder/internal/repository"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// State of an alert session
type State string

const (
	StateIdle    State = "idle"
	StateRinging State = "ringing"
)

// Alert is the dose an alert session is ringing for
type Alert struct {
	Log       model.MedicationLogWithDetails `json:"log"`
	Ringtone  string                         `json:"ringtone,omitempty"`
	SoundURL  string                         `json:"sound_url,omitempty"`
	StartedAt time.Time                      `json:"started_at"`
	ExpiresAt time.Time                      `json:"expires_at"`
}

// EventType names an alert lifecycle event.
// EventResolved ends an alert whose log was given a status elsewhere.
type EventType string

const (
	EventOpened       EventType = "opened"
	EventTaken        EventType = "taken"
	EventMissed       EventType = "missed"
	EventSnoozed      EventType = "snoozed"
	EventExpired      EventType = "expired"
	EventResolved     EventType = "resolved"
	EventActionFailed EventType = "action_failed"
	// EventState carries the current alert when a subscriber joins
	EventState EventType = "state"
)

// Event is published to session subscribers on every transition
type Event struct {
	Type  EventType `json:"type"`
	Alert *Alert    `json:"alert,omitempty"`
	Error string    `json:"error,omitempty"`
	At    time.Time `json:"at"`
}

const subscriberBuffer = 16

// SessionDeps are the collaborators of an alert session
type SessionDeps struct {
	Logs        LogRepository
	Medications MedicationRepository
	Auditor     StatusAuditor
	Notifier    notify.Notifier
	Player      notify.Player
	Clock       Clock
	Logger      *zap.Logger
}

// Session is the Idle/Ringing state machine for one user.
// At most one alert rings at a time; every exit from Ringing cancels the expiry timer.
type Session struct {
	mu     sync.Mutex
	userID string
	window time.Duration

	logs     LogRepository
	meds     MedicationRepository
	auditor  StatusAuditor
	notifier notify.Notifier
	player   notify.Player
	clock    Clock
	logger   *zap.Logger

	state   State
	alert   *Alert
	timer   Timer
	gen     uint64
	playing string

	subs    map[int]chan Event
	nextSub int
	closed  bool
}

// NewSession creates an idle session for userID
func NewSession(userID string, window time.Duration, deps SessionDeps) *Session {
	if window <= 0 {
		window = DefaultAlarmWindow
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Player == nil {
		deps.Player = notify.NopPlayer{}
	}
	if deps.Clock == nil {
		deps.Clock = SystemClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Session{
		userID:   userID,
		window:   window,
		logs:     deps.Logs,
		meds:     deps.Medications,
		auditor:  deps.Auditor,
		notifier: deps.Notifier,
		player:   deps.Player,
		clock:    deps.Clock,
		logger:   deps.Logger.With(zap.String("user_id", userID)),
		state:    StateIdle,
		subs:     make(map[int]chan Event),
	}
}

// UserID returns the owner of the session
func (s *Session) UserID() string {
	return s.userID
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Alert returns a copy of the ringing alert, or nil when idle
func (s *Session) Alert() *Alert {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alert == nil {
		return nil
	}
	a := *s.alert
	return &a
}

// Open starts ringing for log using the user's settings
func (s *Session) Open(ctx context.Context, log model.MedicationLogWithDetails, settings model.UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("session for user %s is closed", s.userID)
	}
	if s.state == StateRinging {
		return ErrAlertActive
	}

	now := s.clock.Now()
	alert := &Alert{
		Log:       log,
		StartedAt: now,
		ExpiresAt: now.Add(s.window),
	}

	s.state = StateRinging
	s.alert = alert
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.window, func() { s.expire(gen) })

	if s.notifier.Permission() == notify.PermissionGranted {
		title := "Time to take " + log.MedicationName()
		body := "Dosage: " + log.MedicationDosage()
		if err := s.notifier.Notify(title, body, log.ID); err != nil {
			s.logger.Warn("failed to show notification", zap.String("log_id", log.ID), zap.Error(err))
		}
	}

	if settings.SoundEnabled {
		sound := notify.LookupRingtone(settings.Ringtone)
		alert.Ringtone = sound.Key
		alert.SoundURL = sound.URL
		s.playLocked(sound)
	}

	s.logger.Info("alert opened",
		zap.String("log_id", log.ID),
		zap.String("medication_id", log.MedicationID),
		zap.Time("scheduled_time", log.ScheduledTime),
	)
	s.publishLocked(EventOpened, nil)

	return nil
}

// Take records the dose as taken and decrements the medication's remaining quantity.
// When the status write fails the session keeps ringing and the error is returned,
// unless the log is no longer pending, which ends the alert.
func (s *Session) Take(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRinging {
		return ErrNoActiveAlert
	}
	log := s.alert.Log

	s.stopAudioLocked()

	takenAt := s.clock.Now()
	if err := s.logs.UpdateStatus(ctx, log.ID, model.LogStatusTaken, &takenAt); err != nil {
		return s.writeFailedLocked("failed to mark dose as taken", log.ID, err)
	}

	if s.meds != nil {
		if err := s.meds.DecrementQuantity(ctx, log.MedicationID); err != nil {
			s.logger.Warn("failed to decrement remaining quantity",
				zap.String("medication_id", log.MedicationID),
				zap.Error(err),
			)
		}
	}
	s.auditLocked(ctx, log.ID, model.LogStatusTaken)

	s.logger.Info("dose taken", zap.String("log_id", log.ID))
	s.finishLocked(EventTaken)
	return nil
}

// Miss records the dose as missed. Write failures are handled as in Take.
func (s *Session) Miss(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRinging {
		return ErrNoActiveAlert
	}
	log := s.alert.Log

	s.stopAudioLocked()

	if err := s.logs.UpdateStatus(ctx, log.ID, model.LogStatusMissed, nil); err != nil {
		return s.writeFailedLocked("failed to mark dose as missed", log.ID, err)
	}
	s.auditLocked(ctx, log.ID, model.LogStatusMissed)

	s.logger.Info("dose missed", zap.String("log_id", log.ID))
	s.finishLocked(EventMissed)
	return nil
}

// Snooze silences the alert. The log stays pending.
func (s *Session) Snooze() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRinging {
		return ErrNoActiveAlert
	}

	s.stopAudioLocked()
	s.logger.Info("alert snoozed", zap.String("log_id", s.alert.Log.ID))
	s.finishLocked(EventSnoozed)
	return nil
}

// ApplySettings updates the audio of a ringing alert after a settings change.
// Disabling sound stops playback and a different ringtone swaps the source.
func (s *Session) ApplySettings(settings model.UserSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRinging {
		return
	}
	if !settings.SoundEnabled {
		s.stopAudioLocked()
		s.alert.Ringtone = ""
		s.alert.SoundURL = ""
		return
	}

	sound := notify.LookupRingtone(settings.Ringtone)
	s.playLocked(sound)
	if s.playing == sound.Key {
		s.alert.Ringtone = sound.Key
		s.alert.SoundURL = sound.URL
	}
}

// Subscribe returns a channel of session events and a function that ends the subscription.
// Slow subscribers lose events rather than blocking the session.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
}

// Close silences any ringing alert and ends all subscriptions
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.state == StateRinging {
		s.stopAudioLocked()
		s.finishLocked(EventSnoozed)
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// expire is the timer callback. A stale generation means the alert it was armed
// for already ended.
func (s *Session) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRinging || s.gen != gen {
		return
	}

	s.stopAudioLocked()
	s.logger.Info("alert expired", zap.String("log_id", s.alert.Log.ID))
	s.finishLocked(EventExpired)
}

// finishLocked moves the session back to Idle
// writeFailedLocked keeps the alert ringing for a retry. A log that is no longer
// pending cannot be written again, so its alert ends.
func (s *Session) writeFailedLocked(msg, logID string, err error) error {
	if errors.Is(err, repository.ErrLogNotPending) {
		s.logger.Info("dose already resolved", zap.String("log_id", logID))
		s.finishLocked(EventResolved)
		return fmt.Errorf("%s: %w", msg, err)
	}

	s.logger.Error(msg, zap.String("log_id", logID), zap.Error(err))
	s.publishLocked(EventActionFailed, err)
	return fmt.Errorf("%s: %w", msg, err)
}

func (s *Session) finishLocked(evt EventType) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.publishLocked(evt, nil)
	s.state = StateIdle
	s.alert = nil
}

func (s *Session) playLocked(sound notify.Sound) {
	if s.playing == sound.Key {
		return
	}
	if err := s.player.PlayLoop(sound); err != nil {
		s.logger.Warn("failed to play ringtone", zap.String("ringtone", sound.Key), zap.Error(err))
		return
	}
	s.playing = sound.Key
}

func (s *Session) stopAudioLocked() {
	if s.playing == "" {
		return
	}
	s.player.Stop()
	s.playing = ""
}

func (s *Session) auditLocked(ctx context.Context, logID string, status model.LogStatus) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.LogStatusChange(ctx, s.userID, logID, status); err != nil {
		s.logger.Warn("failed to audit status change", zap.String("log_id", logID), zap.Error(err))
	}
}

func (s *Session) publishLocked(evt EventType, err error) {
	e := Event{Type: evt, At: s.clock.Now()}
	if s.alert != nil {
		a := *s.alert
		e.Alert = &a
	}
	if err != nil {
		e.Error = err.Error()
	}

	for _, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.logger.Debug("dropping event for slow subscriber", zap.String("event", string(evt)))
		}
	}
}
