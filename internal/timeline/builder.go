// Package timeline turns a day's sessions into the ordered list of dated
// events the dispatch loop consumes.
package timeline

import (
	"sort"
	"time"

	"github.com/noah-isme/classbell/internal/models"
)

// Build emits three events per session (Upcoming, Starting, Ending) anchored
// to the calendar day of date, ordered by instant. Ties are broken by phase
// priority and then course id so identical input always yields identical
// output. Pure: no I/O, no shared state.
//
// An Upcoming instant may land before midnight when the notice window is
// larger than the gap to the day boundary; the dispatcher's missed-event
// policy deals with it.
func Build(sessions []models.Session, date time.Time, noticeWindow time.Duration) []models.DatedEvent {
	events := make([]models.DatedEvent, 0, len(sessions)*3)
	for _, s := range sessions {
		start := s.Start.On(date)
		events = append(events,
			models.DatedEvent{At: start.Add(-noticeWindow), Phase: models.PhaseUpcoming, Session: s},
			models.DatedEvent{At: start, Phase: models.PhaseStarting, Session: s},
			models.DatedEvent{At: s.End.On(date), Phase: models.PhaseEnding, Session: s},
		)
	}

	sort.Slice(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if !a.At.Equal(b.At) {
			return a.At.Before(b.At)
		}
		if a.Phase != b.Phase {
			return a.Phase < b.Phase
		}
		return a.Session.Course < b.Session.Course
	})

	return events
}
