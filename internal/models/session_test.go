package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	ct, err := ParseClockTime("09:30")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 9, Minute: 30}, ct)
	assert.Equal(t, "09:30", ct.String())

	for _, raw := range []string{"", "9", "24:00", "12:60", "ab:cd", "12:34:56"} {
		_, err := ParseClockTime(raw)
		assert.Error(t, err, raw)
	}
}

func TestClockTimeOn(t *testing.T) {
	date := time.Date(2024, time.March, 4, 17, 45, 12, 0, time.Local)
	at := ClockTime{Hour: 9, Minute: 15}.On(date)
	assert.Equal(t, time.Date(2024, time.March, 4, 9, 15, 0, 0, time.Local), at)
}

func TestClockTimeBefore(t *testing.T) {
	assert.True(t, ClockTime{Hour: 9}.Before(ClockTime{Hour: 10}))
	assert.True(t, ClockTime{Hour: 9, Minute: 10}.Before(ClockTime{Hour: 9, Minute: 20}))
	assert.False(t, ClockTime{Hour: 9, Minute: 10}.Before(ClockTime{Hour: 9, Minute: 10}))
}

func TestSessionTimeRange(t *testing.T) {
	s := Session{Course: "CS101", Start: ClockTime{Hour: 9}, End: ClockTime{Hour: 10, Minute: 30}}
	assert.Equal(t, "09:00-10:30", s.TimeRange())
}
