package plan

import (
	"strconv"
	"time"
)

// dateLayout is the canonical form of a date key.
const dateLayout = "2006-01-02"

// DateKey returns the canonical YYYY-MM-DD key for a date.
func DateKey(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.Local)
}

// WeekStart returns the Monday on or before the given date.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

// ValidTime reports whether s is a 24-hour HH:MM time: five characters,
// a colon in the middle, hour 0-23 and minute 0-59.
func ValidTime(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil {
		return false
	}
	minute, err := strconv.Atoi(s[3:])
	if err != nil {
		return false
	}
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}
