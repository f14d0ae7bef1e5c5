package shared

import (
	"strings"
	"time"
)

// Layouts used by persisted records
const (
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
	DateLayout      = "2006-01-02"
)

// FormatTimestamp renders t as a UTC ISO-8601 timestamp with milliseconds
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// FormatDate renders the calendar date of t in t's location
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseTime accepts full timestamps and date-only strings. Date-only values
// are interpreted as midnight in loc; timestamps are converted into loc.
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if len(s) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		return t, err == nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns the first instant of t's month, shifted by offset months
func StartOfMonth(t time.Time, offset int) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+time.Month(offset), 1, 0, 0, 0, 0, t.Location())
}
