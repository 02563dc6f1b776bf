package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/vcscsvcscs/medreminder/pkg/model"
	"go.uber.org/zap"
)

// DefaultDoseSchedule runs shortly after local midnight
const DefaultDoseSchedule = "5 0 * * *"

// ActiveMedicationSource lists medications of all users that still need reminders
type ActiveMedicationSource interface {
	FindActive(ctx context.Context) ([]model.Medication, error)
}

// PendingLogCreator inserts a pending log unless it already exists
type PendingLogCreator interface {
	CreatePending(ctx context.Context, log *model.MedicationLog) (bool, error)
}

// DoseScheduler materialises each day's pending logs from medication reminder times
type DoseScheduler struct {
	meds     ActiveMedicationSource
	logs     PendingLogCreator
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	cron *cron.Cron
}

// NewDoseScheduler creates a DoseScheduler working in local days of loc
func NewDoseScheduler(meds ActiveMedicationSource, logs PendingLogCreator, loc *time.Location, logger *zap.Logger) *DoseScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &DoseScheduler{
		meds:     meds,
		logs:     logs,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// Start materialises today's doses and then repeats on the cron spec
func (d *DoseScheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultDoseSchedule
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cron != nil {
		return fmt.Errorf("dose scheduler already started")
	}

	c := cron.New(
		cron.WithLocation(d.location),
		cron.WithLogger(cron.PrintfLogger(zap.NewStdLog(d.logger))),
	)
	if _, err := c.AddFunc(spec, func() { d.runOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule dose materialisation: %w", err)
	}

	d.runOnce(ctx)

	c.Start()
	d.cron = c
	d.logger.Info("dose scheduler started", zap.String("schedule", spec), zap.String("location", d.location.String()))
	return nil
}

// Stop halts the cron loop and waits for a running job to finish
func (d *DoseScheduler) Stop() {
	d.mu.Lock()
	c := d.cron
	d.cron = nil
	d.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (d *DoseScheduler) runOnce(ctx context.Context) {
	created, err := d.MaterializeDay(ctx, d.now())
	if err != nil {
		d.logger.Error("dose materialisation failed", zap.Error(err))
		return
	}
	d.logger.Info("dose materialisation finished", zap.Int("created", created))
}

// MaterializeDay creates pending logs for every reminder time on day's local date.
// Existing logs are left alone, so repeated runs create nothing new.
func (d *DoseScheduler) MaterializeDay(ctx context.Context, day time.Time) (int, error) {
	meds, err := d.meds.FindActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load active medications: %w", err)
	}

	local := day.In(d.location)
	created := 0
	for _, med := range meds {
		if !coversDate(med, local) {
			continue
		}
		n, err := d.materialize(ctx, med, local, time.Time{})
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

// MaterializeMedication creates pending logs for the reminder times of med that are
// still ahead on now's local date. Times earlier in the current minute count as ahead.
func (d *DoseScheduler) MaterializeMedication(ctx context.Context, med model.Medication, now time.Time) (int, error) {
	local := now.In(d.location)
	if !med.Active || !coversDate(med, local) {
		return 0, nil
	}
	return d.materialize(ctx, med, local, local.Truncate(time.Minute))
}

// materialize inserts the logs of med on local's date that are not before from
func (d *DoseScheduler) materialize(ctx context.Context, med model.Medication, local, from time.Time) (int, error) {
	created := 0
	for _, hhmm := range med.ReminderTimes {
		scheduled, err := atLocalTime(local, hhmm)
		if err != nil {
			d.logger.Warn("skipping invalid reminder time",
				zap.String("medication_id", med.ID),
				zap.String("reminder_time", hhmm),
			)
			continue
		}
		if scheduled.Before(from) {
			continue
		}

		log := &model.MedicationLog{
			ID:            uuid.New().String(),
			UserID:        med.UserID,
			MedicationID:  med.ID,
			ScheduledTime: scheduled,
		}
		inserted, err := d.logs.CreatePending(ctx, log)
		if err != nil {
			return created, err
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

// coversDate reports whether the medication's course includes the calendar date of day.
// Start and end dates are calendar dates and are compared by year, month and day only.
func coversDate(med model.Medication, day time.Time) bool {
	date := dateOf(day)
	if dateOf(med.StartDate).After(date) {
		return false
	}
	if med.EndDate != nil && dateOf(*med.EndDate).Before(date) {
		return false
	}
	return true
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atLocalTime(day time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, day.Location()), nil
}
