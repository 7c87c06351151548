// Package notifier maps session phase events onto the external notification
// channel and tracks which message currently represents each course.
package notifier

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/classbell/internal/metrics"
	"github.com/noah-isme/classbell/internal/models"
)

// Content is what the channel displays for a session.
type Content struct {
	Title       string
	Description string
}

// Channel is the external notification channel. Create returns the stable
// identifier later used to update or retract the message; an empty id with a
// nil error means the notification went out but cannot be tracked.
type Channel interface {
	Create(ctx context.Context, content Content) (string, error)
	Update(ctx context.Context, messageID string, content Content) error
	Delete(ctx context.Context, messageID string) error
}

const (
	titleUpcoming = "Upcoming Class"
	titleCurrent  = "Current Class"
)

// ContentFor renders the outward-facing message for a session phase.
func ContentFor(phase models.Phase, session models.Session) Content {
	title := titleCurrent
	if phase == models.PhaseUpcoming {
		title = titleUpcoming
	}
	desc := fmt.Sprintf("`%s`", session.TimeRange())
	if session.Link != "" {
		desc += fmt.Sprintf(" [%s](%s)", session.Course, session.Link)
	} else {
		desc += fmt.Sprintf(" %s (Link not available)", session.Course)
	}
	return Content{Title: title, Description: desc}
}

// Notifier drives the per-course state machine: absent, posted, live, then
// absent again once retracted. Transitions happen only on successful channel
// calls; a failed call leaves local state untouched and the loop moves on.
type Notifier struct {
	channel Channel
	logger  *zap.Logger
	metrics *metrics.Service

	mu   sync.Mutex
	sent map[string]string // course id -> channel message id
}

// New constructs a Notifier.
func New(channel Channel, logger *zap.Logger, m *metrics.Service) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		channel: channel,
		logger:  logger,
		metrics: m,
		sent:    make(map[string]string),
	}
}

// Handle applies one phase event for a session. At most one channel call is
// made per invocation. The returned error is the channel failure, already
// logged; callers continue regardless.
func (n *Notifier) Handle(ctx context.Context, phase models.Phase, session models.Session) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch phase {
	case models.PhaseUpcoming:
		return n.post(ctx, phase, session)
	case models.PhaseStarting:
		if messageID, ok := n.sent[session.Course]; ok {
			if err := n.channel.Update(ctx, messageID, ContentFor(phase, session)); err != nil {
				n.metrics.ObserveChannelError("update")
				n.logger.Warn("failed to update notification",
					zap.String("course", session.Course), zap.Error(err))
				return err
			}
			return nil
		}
		// Upcoming never made it out; fall back to a fresh post so the
		// class still gets announced.
		return n.post(ctx, phase, session)
	case models.PhaseEnding:
		messageID, ok := n.sent[session.Course]
		if !ok {
			// Nothing to retract.
			return nil
		}
		if err := n.channel.Delete(ctx, messageID); err != nil {
			n.metrics.ObserveChannelError("delete")
			n.logger.Warn("failed to retract notification, leaving record for daily cleanup",
				zap.String("course", session.Course), zap.Error(err))
			return err
		}
		delete(n.sent, session.Course)
		n.metrics.SetTracked(len(n.sent))
		return nil
	default:
		return nil
	}
}

func (n *Notifier) post(ctx context.Context, phase models.Phase, session models.Session) error {
	messageID, err := n.channel.Create(ctx, ContentFor(phase, session))
	if err != nil {
		n.metrics.ObserveChannelError("create")
		n.logger.Warn("failed to post notification",
			zap.String("course", session.Course), zap.Error(err))
		return err
	}
	if messageID == "" {
		// Sent but untracked: the channel answered with something we
		// declined to parse. Later phases for this course become no-ops.
		n.logger.Info("notification sent without trackable id", zap.String("course", session.Course))
		return nil
	}
	n.sent[session.Course] = messageID
	n.metrics.SetTracked(len(n.sent))
	return nil
}

// ResetAll retracts every tracked notification best-effort and empties the
// map regardless of individual outcomes. Dropping an id we failed to delete
// beats accumulating ids we can never reach again.
func (n *Notifier) ResetAll(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for course, messageID := range n.sent {
		if err := n.channel.Delete(ctx, messageID); err != nil {
			n.metrics.ObserveChannelError("delete")
			n.logger.Warn("cleanup delete failed",
				zap.String("course", course), zap.String("message_id", messageID), zap.Error(err))
		}
		delete(n.sent, course)
	}
	n.metrics.SetTracked(0)
}

// Tracked returns how many notifications are currently tracked.
func (n *Notifier) Tracked() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
