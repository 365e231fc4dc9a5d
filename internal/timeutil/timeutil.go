package timeutil

import (
	"fmt"
	"time"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate formats a time as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseBound parses a query bound given as RFC 3339 or as a bare date. A bare date
// used as an upper bound covers the whole day.
func ParseBound(value string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	day, err := ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or %s", value, DateLayout)
	}
	if upper {
		return day.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return day, nil
}
