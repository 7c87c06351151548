package scheduler

import (
	"context"
	"time"
)

// Clock abstracts wall time so the dispatch loop can run under test.
type Clock interface {
	Now() time.Time
	// WaitUntil blocks until t is reached or ctx is cancelled.
	WaitUntil(ctx context.Context, t time.Time) error
}

type systemClock struct{}

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) WaitUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
