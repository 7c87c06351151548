package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classbell/internal/models"
)

// fakeClock jumps straight to every instant it is asked to wait for.
type fakeClock struct {
	now    time.Time
	waited []time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) WaitUntil(ctx context.Context, t time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.waited = append(c.waited, t)
	if t.After(c.now) {
		c.now = t
	}
	return nil
}

type dispatched struct {
	phase  models.Phase
	course string
}

type recordingHandler struct {
	events []dispatched
	err    error
}

func (h *recordingHandler) Handle(ctx context.Context, phase models.Phase, session models.Session) error {
	h.events = append(h.events, dispatched{phase: phase, course: session.Course})
	return h.err
}

var day = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local)

func at(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

func timelineFor(course string) []models.DatedEvent {
	s := models.Session{Course: course, Start: models.ClockTime{Hour: 9}, End: models.ClockTime{Hour: 10}}
	return []models.DatedEvent{
		{At: at(8, 45), Phase: models.PhaseUpcoming, Session: s},
		{At: at(9, 0), Phase: models.PhaseStarting, Session: s},
		{At: at(10, 0), Phase: models.PhaseEnding, Session: s},
	}
}

func TestRunWaitsAndDispatchesInOrder(t *testing.T) {
	clock := &fakeClock{now: at(8, 44)}
	handler := &recordingHandler{}
	d := NewDispatcher(handler, clock, 15*time.Minute, nil, nil)

	require.NoError(t, d.Run(context.Background(), timelineFor("CS101")))

	assert.Equal(t, []dispatched{
		{models.PhaseUpcoming, "CS101"},
		{models.PhaseStarting, "CS101"},
		{models.PhaseEnding, "CS101"},
	}, handler.events)
	assert.Equal(t, []time.Time{at(8, 45), at(9, 0), at(10, 0)}, clock.waited)
}

func TestRunSkipsMissedEvents(t *testing.T) {
	// Process comes up mid-class: upcoming and starting are 45 and 30
	// minutes stale, beyond the 15 minute grace period.
	clock := &fakeClock{now: at(9, 30)}
	handler := &recordingHandler{}
	d := NewDispatcher(handler, clock, 15*time.Minute, nil, nil)

	require.NoError(t, d.Run(context.Background(), timelineFor("CS101")))

	assert.Equal(t, []dispatched{{models.PhaseEnding, "CS101"}}, handler.events)
	assert.Equal(t, []time.Time{at(10, 0)}, clock.waited)
}

func TestRunNearDueDispatchesWithoutWaiting(t *testing.T) {
	clock := &fakeClock{now: at(8, 50)}
	handler := &recordingHandler{}
	d := NewDispatcher(handler, clock, 15*time.Minute, nil, nil)

	events := timelineFor("CS101")[:1] // upcoming at 08:45, five minutes ago
	require.NoError(t, d.Run(context.Background(), events))

	assert.Len(t, handler.events, 1)
	assert.Empty(t, clock.waited)
}

func TestRunAbortsOnCancellation(t *testing.T) {
	clock := &fakeClock{now: at(8, 44)}
	handler := &recordingHandler{}
	d := NewDispatcher(handler, clock, 15*time.Minute, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Run(ctx, timelineFor("CS101"))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, handler.events, "cancellation must not produce side effects")
}

func TestRunContinuesAfterHandlerError(t *testing.T) {
	clock := &fakeClock{now: at(8, 44)}
	handler := &recordingHandler{err: errors.New("channel down")}
	d := NewDispatcher(handler, clock, 15*time.Minute, nil, nil)

	require.NoError(t, d.Run(context.Background(), timelineFor("CS101")))
	assert.Len(t, handler.events, 3, "a failed event never stops the loop")
}

func TestSystemClockWaitUntilPast(t *testing.T) {
	clock := SystemClock()
	require.NoError(t, clock.WaitUntil(context.Background(), time.Now().Add(-time.Minute)))
}

func TestSystemClockWaitUntilCancelled(t *testing.T) {
	clock := SystemClock()
	ctx, cancel := context.WithCancel(context.Background())
	go cancel()
	err := clock.WaitUntil(ctx, time.Now().Add(time.Hour))
	assert.True(t, errors.Is(err, context.Canceled))
}
