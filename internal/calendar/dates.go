// Package calendar derives the church calendar: recurring services, prayer
// meetings and birthdays are generated on demand as virtual events and merged
// with persisted events. Everything here is pure; callers inject "now".
package calendar

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO date format used for every event date.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO date (a trailing time component is ignored).
// Impossible dates such as 2023-02-30 are rejected.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) && s[len(DateLayout)] == 'T' {
		s = s[:len(DateLayout)]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || year <= 0 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	if day > daysIn(year, time.Month(month)) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// FormatDate renders t as an ISO date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the calendar date of now, at midnight UTC.
func Today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// OccurrenceInMonth returns which occurrence of its weekday the day is (1st..5th).
func OccurrenceInMonth(day int) int {
	return (day + 6) / 7
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
