// Package driver owns the process's long-lived control loop: one full day of
// notifications at a time, forever.
package driver

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/classbell/internal/models"
	"github.com/noah-isme/classbell/internal/scheduler"
	"github.com/noah-isme/classbell/internal/timeline"
	"github.com/noah-isme/classbell/internal/timetable"
)

type resetter interface {
	ResetAll(ctx context.Context)
}

type dispatcher interface {
	Run(ctx context.Context, events []models.DatedEvent) error
}

// Driver runs the daily cycle: reset leftover notifications, build today's
// timeline, dispatch it, then sleep until the next reset point.
type Driver struct {
	timetable    *timetable.Timetable
	notifier     resetter
	dispatcher   dispatcher
	clock        scheduler.Clock
	noticeWindow time.Duration
	resetHour    int
	logger       *zap.Logger
}

// New constructs a Driver.
func New(tt *timetable.Timetable, notifier resetter, disp dispatcher, clock scheduler.Clock, noticeWindow time.Duration, resetHour int, logger *zap.Logger) *Driver {
	if clock == nil {
		clock = scheduler.SystemClock()
	}
	if noticeWindow <= 0 {
		noticeWindow = 15 * time.Minute
	}
	if resetHour < 0 || resetHour > 23 {
		resetHour = 2
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		timetable:    tt,
		notifier:     notifier,
		dispatcher:   disp,
		clock:        clock,
		noticeWindow: noticeWindow,
		resetHour:    resetHour,
		logger:       logger,
	}
}

// Run loops until ctx is cancelled. Each iteration covers one calendar day.
// The reset at the top of the cycle also reconciles whatever a previous crash
// or abandoned day left behind.
func (d *Driver) Run(ctx context.Context) error {
	for {
		log := d.logger.With(zap.String("run_id", uuid.NewString()))

		d.notifier.ResetAll(ctx)

		today := d.clock.Now()
		sessions := d.timetable.On(today)
		events := timeline.Build(sessions, today, d.noticeWindow)
		log.Info("day started",
			zap.String("weekday", today.Weekday().String()),
			zap.Int("sessions", len(sessions)),
			zap.Int("events", len(events)))

		if err := d.dispatcher.Run(ctx, events); err != nil {
			return err
		}

		next := d.nextReset(d.clock.Now())
		log.Info("day finished, sleeping until reset", zap.Time("next_reset", next))
		if err := d.clock.WaitUntil(ctx, next); err != nil {
			return err
		}
	}
}

// nextReset is the reset hour of the following day, in now's location.
func (d *Driver) nextReset(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), d.resetHour, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
