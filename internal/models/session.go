package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a time of day with minute precision, independent of any date.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a 24-hour "HH:MM" string.
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid time %q: want HH:MM", raw)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("invalid time %q: bad hour", raw)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("invalid time %q: bad minute", raw)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

// On anchors the clock time to the calendar day of date, keeping its location.
func (t ClockTime) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// Before reports whether t is earlier in the day than other.
func (t ClockTime) Before(other ClockTime) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// String renders the time as "HH:MM".
func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Session is one scheduled class occurrence on a weekday. Immutable once loaded.
type Session struct {
	Course string
	Start  ClockTime
	End    ClockTime
	Link   string // empty means no link available
}

// TimeRange renders the session's time span as "HH:MM-HH:MM".
func (s Session) TimeRange() string {
	return s.Start.String() + "-" + s.End.String()
}
