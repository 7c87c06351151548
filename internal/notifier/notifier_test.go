package notifier

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classbell/internal/models"
)

type channelCall struct {
	op        string
	messageID string
	content   Content
}

type fakeChannel struct {
	calls     []channelCall
	nextID    int
	createErr error
	updateErr error
	deleteErr error
}

func (c *fakeChannel) Create(ctx context.Context, content Content) (string, error) {
	c.calls = append(c.calls, channelCall{op: "create", content: content})
	if c.createErr != nil {
		return "", c.createErr
	}
	c.nextID++
	return fmt.Sprintf("msg-%d", c.nextID), nil
}

func (c *fakeChannel) Update(ctx context.Context, messageID string, content Content) error {
	c.calls = append(c.calls, channelCall{op: "update", messageID: messageID, content: content})
	return c.updateErr
}

func (c *fakeChannel) Delete(ctx context.Context, messageID string) error {
	c.calls = append(c.calls, channelCall{op: "delete", messageID: messageID})
	return c.deleteErr
}

func cs101() models.Session {
	return models.Session{Course: "CS101", Start: models.ClockTime{Hour: 9}, End: models.ClockTime{Hour: 10}}
}

func TestHandleFullLifecycle(t *testing.T) {
	ch := &fakeChannel{}
	n := New(ch, nil, nil)
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, models.PhaseUpcoming, cs101()))
	assert.Equal(t, 1, n.Tracked())

	require.NoError(t, n.Handle(ctx, models.PhaseStarting, cs101()))
	require.NoError(t, n.Handle(ctx, models.PhaseEnding, cs101()))
	assert.Equal(t, 0, n.Tracked())

	require.Len(t, ch.calls, 3)
	assert.Equal(t, "create", ch.calls[0].op)
	assert.Equal(t, "Upcoming Class", ch.calls[0].content.Title)
	assert.Equal(t, "update", ch.calls[1].op)
	assert.Equal(t, "msg-1", ch.calls[1].messageID, "update must target the created message")
	assert.Equal(t, "Current Class", ch.calls[1].content.Title)
	assert.Equal(t, "delete", ch.calls[2].op)
	assert.Equal(t, "msg-1", ch.calls[2].messageID)
}

func TestHandleCreateFailureFallsBackToCreateOnStarting(t *testing.T) {
	ch := &fakeChannel{createErr: errors.New("boom")}
	n := New(ch, nil, nil)
	ctx := context.Background()

	require.Error(t, n.Handle(ctx, models.PhaseUpcoming, cs101()))
	assert.Equal(t, 0, n.Tracked())

	ch.createErr = nil
	require.NoError(t, n.Handle(ctx, models.PhaseStarting, cs101()))
	assert.Equal(t, 1, n.Tracked())

	require.Len(t, ch.calls, 2)
	assert.Equal(t, "create", ch.calls[1].op, "no record means starting posts instead of updating")
	assert.Equal(t, "Current Class", ch.calls[1].content.Title)
}

func TestHandleStartingIdempotent(t *testing.T) {
	ch := &fakeChannel{}
	n := New(ch, nil, nil)
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, models.PhaseUpcoming, cs101()))
	require.NoError(t, n.Handle(ctx, models.PhaseStarting, cs101()))
	require.NoError(t, n.Handle(ctx, models.PhaseStarting, cs101()))

	require.Len(t, ch.calls, 3)
	assert.Equal(t, "update", ch.calls[1].op)
	assert.Equal(t, "update", ch.calls[2].op)
	assert.Equal(t, ch.calls[1].messageID, ch.calls[2].messageID, "tracked id must not change")
	assert.Equal(t, 1, n.Tracked())
}

func TestHandleEndingWithoutRecordIsNoOp(t *testing.T) {
	ch := &fakeChannel{}
	n := New(ch, nil, nil)

	require.NoError(t, n.Handle(context.Background(), models.PhaseEnding, cs101()))
	assert.Empty(t, ch.calls, "cannot retract a message that was never created")
}

func TestHandleEndingFailureLeavesRecord(t *testing.T) {
	ch := &fakeChannel{}
	n := New(ch, nil, nil)
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, models.PhaseUpcoming, cs101()))
	ch.deleteErr = errors.New("boom")
	require.Error(t, n.Handle(ctx, models.PhaseEnding, cs101()))
	assert.Equal(t, 1, n.Tracked(), "dangling record stays until the daily cleanup")
}

func TestHandleUntrackedCreate(t *testing.T) {
	// An empty id from the channel means sent-but-untracked.
	ch := &fakeChannel{}
	n := New(untrackedChannel{ch}, nil, nil)
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, models.PhaseUpcoming, cs101()))
	assert.Equal(t, 0, n.Tracked())

	require.NoError(t, n.Handle(ctx, models.PhaseEnding, cs101()))
	deletes := 0
	for _, call := range ch.calls {
		if call.op == "delete" {
			deletes++
		}
	}
	assert.Zero(t, deletes)
}

type untrackedChannel struct{ *fakeChannel }

func (c untrackedChannel) Create(ctx context.Context, content Content) (string, error) {
	_, err := c.fakeChannel.Create(ctx, content)
	return "", err
}

func TestResetAllClearsEverythingDespiteFailures(t *testing.T) {
	ch := &fakeChannel{}
	n := New(ch, nil, nil)
	ctx := context.Background()

	require.NoError(t, n.Handle(ctx, models.PhaseUpcoming, cs101()))
	other := cs101()
	other.Course = "MA202"
	require.NoError(t, n.Handle(ctx, models.PhaseUpcoming, other))
	require.Equal(t, 2, n.Tracked())

	ch.deleteErr = errors.New("boom")
	n.ResetAll(ctx)

	assert.Equal(t, 0, n.Tracked(), "reset always empties the map")
	deletes := 0
	for _, call := range ch.calls {
		if call.op == "delete" {
			deletes++
		}
	}
	assert.Equal(t, 2, deletes, "one delete attempt per tracked record")
}

func TestContentFor(t *testing.T) {
	withLink := cs101()
	withLink.Link = "https://example.com/room"
	content := ContentFor(models.PhaseUpcoming, withLink)
	assert.Equal(t, "Upcoming Class", content.Title)
	assert.Equal(t, "`09:00-10:00` [CS101](https://example.com/room)", content.Description)

	content = ContentFor(models.PhaseStarting, cs101())
	assert.Equal(t, "Current Class", content.Title)
	assert.Equal(t, "`09:00-10:00` CS101 (Link not available)", content.Description)
}
