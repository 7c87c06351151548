// Package scheduler walks one day's event timeline in real time, handing each
// event to the notifier at its instant.
package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classbell/internal/metrics"
	"github.com/noah-isme/classbell/internal/models"
)

// Handler consumes dispatched events.
type Handler interface {
	Handle(ctx context.Context, phase models.Phase, session models.Session) error
}

// Dispatcher delivers an ordered timeline sequentially. One event is in
// flight at a time, which is what keeps Upcoming before Starting before
// Ending for every course without extra synchronisation.
type Dispatcher struct {
	handler         Handler
	clock           Clock
	missedThreshold time.Duration
	logger          *zap.Logger
	metrics         *metrics.Service
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(handler Handler, clock Clock, missedThreshold time.Duration, logger *zap.Logger, m *metrics.Service) *Dispatcher {
	if clock == nil {
		clock = SystemClock()
	}
	if missedThreshold <= 0 {
		missedThreshold = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		handler:         handler,
		clock:           clock,
		missedThreshold: missedThreshold,
		logger:          logger,
		metrics:         m,
	}
}

// Run walks events in order. Events whose instant lies further in the past
// than the missed threshold are skipped without touching the handler; this is
// also the recovery path after a mid-day restart. Cancellation aborts the
// current wait and abandons the rest of the day. Handler failures are logged
// and never stop the loop.
func (d *Dispatcher) Run(ctx context.Context, events []models.DatedEvent) error {
	for _, event := range events {
		if err := ctx.Err(); err != nil {
			return err
		}

		diff := event.At.Sub(d.clock.Now())
		if diff < -d.missedThreshold {
			d.metrics.ObserveMissed(event.Phase)
			d.logger.Info("skipping missed event",
				zap.String("course", event.Session.Course),
				zap.Stringer("phase", event.Phase),
				zap.Time("instant", event.At),
				zap.Duration("late_by", -diff))
			continue
		}

		if diff > 0 {
			d.logger.Info("waiting for event",
				zap.String("course", event.Session.Course),
				zap.Stringer("phase", event.Phase),
				zap.Time("instant", event.At))
			if err := d.clock.WaitUntil(ctx, event.At); err != nil {
				return err
			}
		}

		d.metrics.ObserveDispatch(event.Phase)
		d.logger.Info("dispatching event",
			zap.String("course", event.Session.Course),
			zap.Stringer("phase", event.Phase))
		// Handler failures are already logged there and stay isolated
		// to this event.
		_ = d.handler.Handle(ctx, event.Phase, event.Session)
	}
	return nil
}
