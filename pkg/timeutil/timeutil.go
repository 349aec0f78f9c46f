// Package timeutil provides UTC calendar-day helpers for Growth Hub.
// Streak accounting works on whole UTC days, so every comparison in the
// engine goes through these helpers rather than raw time arithmetic.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// StartOfDay truncates a time to midnight UTC of the same calendar day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of the UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// Date builds a midnight-UTC time for the given calendar date.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two times fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return StartOfDay(a).Equal(StartOfDay(b))
}

// DaysBetween returns the number of whole UTC calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(StartOfDay(b).Sub(StartOfDay(a)) / (24 * time.Hour))
}

// DaysSince returns whole UTC calendar days from t until now.
func DaysSince(t time.Time) int {
	return DaysBetween(t, time.Now())
}

// FormatDate renders a time as its UTC calendar date (2006-01-02).
func FormatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseDate parses a 2006-01-02 date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}
