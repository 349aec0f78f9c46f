package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 1, 2, 17, 45, 12, 999, time.UTC)
	got := StartOfDay(in)
	assert.Equal(t, Date(2025, 1, 2), got)
}

func TestStartOfDay_NonUTCInput(t *testing.T) {
	// 23:30 in UTC+5 is 18:30 UTC on the same date.
	zone := time.FixedZone("UTC+5", 5*60*60)
	in := time.Date(2025, 1, 2, 23, 30, 0, 0, zone)
	assert.Equal(t, Date(2025, 1, 2), StartOfDay(in))

	// 03:00 in UTC+5 is 22:00 UTC the previous day.
	in = time.Date(2025, 1, 3, 3, 0, 0, 0, zone)
	assert.Equal(t, Date(2025, 1, 2), StartOfDay(in))
}

func TestSameDay(t *testing.T) {
	morning := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	night := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)
	nextDay := time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)

	assert.True(t, SameDay(morning, night))
	assert.False(t, SameDay(night, nextDay))
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", Date(2025, 1, 1), time.Date(2025, 1, 1, 23, 0, 0, 0, time.UTC), 0},
		{"next day", Date(2025, 1, 1), Date(2025, 1, 2), 1},
		{"gap", Date(2025, 1, 1), Date(2025, 1, 5), 4},
		{"backwards", Date(2025, 1, 5), Date(2025, 1, 1), -4},
		{"month boundary", Date(2025, 1, 31), Date(2025, 2, 1), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestParseFormatDate(t *testing.T) {
	parsed, err := ParseDate("2025-06-16")
	assert.NoError(t, err)
	assert.Equal(t, Date(2025, 6, 16), parsed)
	assert.Equal(t, "2025-06-16", FormatDate(parsed))

	_, err = ParseDate("not-a-date")
	assert.Error(t, err)
}
