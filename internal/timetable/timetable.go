package timetable

import (
	"fmt"
	"time"

	"github.com/noah-isme/classbell/internal/models"
	appErrors "github.com/noah-isme/classbell/pkg/errors"
)

// Timetable is the immutable weekly schedule, keyed by weekday. Built once at
// startup and read-only afterwards; a restart rebuilds it wholesale.
type Timetable struct {
	days [7][]models.Session
}

// New validates the weekly mapping and freezes it into a Timetable. Two
// sessions sharing a course id on the same weekday are rejected: the notifier
// keys its message tracking by course id, so a collision would corrupt it.
func New(week map[time.Weekday][]models.Session) (*Timetable, error) {
	t := &Timetable{}
	for weekday, sessions := range week {
		seen := make(map[string]struct{}, len(sessions))
		for _, s := range sessions {
			if s.Course == "" {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: session with empty course id", weekday))
			}
			if _, dup := seen[s.Course]; dup {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: duplicate course id %q", weekday, s.Course))
			}
			seen[s.Course] = struct{}{}
			if !s.Start.Before(s.End) {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s: course %q must start before it ends", weekday, s.Course))
			}
		}
		t.days[weekday] = sessions
	}
	return t, nil
}

// On returns the sessions scheduled on the weekday of date.
func (t *Timetable) On(date time.Time) []models.Session {
	return t.days[date.Weekday()]
}

// SessionCount returns the number of sessions across the whole week.
func (t *Timetable) SessionCount() int {
	n := 0
	for _, day := range t.days {
		n += len(day)
	}
	return n
}
