package models

import "time"

// Phase marks which boundary of a session an event represents. The numeric
// order doubles as the tie-break priority when two events share an instant.
type Phase int

const (
	PhaseUpcoming Phase = iota
	PhaseStarting
	PhaseEnding
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseUpcoming:
		return "upcoming"
	case PhaseStarting:
		return "starting"
	case PhaseEnding:
		return "ending"
	default:
		return "unknown"
	}
}

// DatedEvent places a session's phase boundary at a concrete instant on a
// calendar day. Produced fresh each day by the timeline builder and never
// persisted.
type DatedEvent struct {
	At      time.Time
	Phase   Phase
	Session Session
}
