package reminder

import (
	"context"
	"errors"
	"time"

	"github.com/vcscsvcscs/medreminder/internal/adherence"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// Opener is the part of a Session the poller drives
type Opener interface {
	Open(ctx context.Context, log model.MedicationLogWithDetails, settings model.UserSettings) error
}

// PollerConfig tunes a poller
type PollerConfig struct {
	Interval    time.Duration
	AlarmWindow time.Duration
	// Location defines the calendar day that "today" refers to
	Location *time.Location
}

// Poller periodically looks for doses that became due and opens an alert for one of them.
//
// Qualifying logs beyond the first are not dropped: they stay unprocessed and
// are picked up by a later tick while still inside their window.
type Poller struct {
	userID    string
	logs      LogRepository
	settings  SettingsRepository
	opener    Opener
	clock     Clock
	cfg       PollerConfig
	processed *ProcessedSet
	logger    *zap.Logger
}

// NewPoller creates a poller for userID
func NewPoller(userID string, logs LogRepository, settings SettingsRepository, opener Opener, clock Clock, cfg PollerConfig, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.AlarmWindow <= 0 {
		cfg.AlarmWindow = DefaultAlarmWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if clock == nil {
		clock = SystemClock()
	}

	return &Poller{
		userID:    userID,
		logs:      logs,
		settings:  settings,
		opener:    opener,
		clock:     clock,
		cfg:       cfg,
		processed: NewProcessedSet(),
		logger:    logger.With(zap.String("user_id", userID)),
	}
}

// Processed exposes the poller's processed-id set
func (p *Poller) Processed() *ProcessedSet {
	return p.processed
}

// Run ticks immediately and then on every interval until ctx is cancelled
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("reminder poller started", zap.Duration("interval", p.cfg.Interval))
	defer p.logger.Info("reminder poller stopped")

	p.Tick(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick runs one poll and reports whether it opened an alert.
// Errors and panics are logged and never escape, so later ticks always run.
func (p *Poller) Tick(ctx context.Context) (opened bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("panic recovered in reminder tick",
				zap.Any("error", r),
				zap.Stack("stack_trace"),
			)
			opened = false
		}
	}()

	if ctx.Err() != nil {
		return false
	}

	now := p.clock.Now().In(p.cfg.Location)
	dayStart, dayEnd := adherence.DayBounds(now)

	logs, err := p.logs.FetchTodayLogs(ctx, p.userID, dayStart, dayEnd)
	if err != nil {
		p.logger.Warn("failed to fetch today's logs", zap.Error(err))
		return false
	}

	stored, err := p.settings.Get(ctx, p.userID)
	if err != nil {
		p.logger.Warn("failed to fetch settings", zap.Error(err))
		return false
	}
	settings := stored.OrDefault(p.userID)

	p.processed.Prune(now.Add(-p.cfg.AlarmWindow))

	for _, log := range logs {
		if p.processed.Contains(log.ID) {
			continue
		}
		if !Qualifies(log.Status, log.ScheduledTime, now, p.cfg.AlarmWindow) {
			continue
		}

		if err := p.opener.Open(ctx, log, settings); err != nil {
			if errors.Is(err, ErrAlertActive) {
				p.logger.Debug("alert ringing, dose queued", zap.String("log_id", log.ID))
			} else {
				p.logger.Warn("failed to open alert", zap.String("log_id", log.ID), zap.Error(err))
			}
			return false
		}

		p.processed.Add(log.ID, log.ScheduledTime)
		return true
	}

	return false
}
