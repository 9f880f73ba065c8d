package calendar

import (
	"strings"

	"churchadmin/internal/models"
)

// OverrideSet holds the virtual ids that persisted events replace or cancel.
type OverrideSet map[string]struct{}

// Overrides collects the overrideOf targets of the given events.
func Overrides(groups ...[]models.Event) OverrideSet {
	set := make(OverrideSet)
	for _, events := range groups {
		for _, e := range events {
			if e.OverrideOf != "" {
				set[e.OverrideOf] = struct{}{}
			}
		}
	}
	return set
}

// Has reports whether id is overridden.
func (s OverrideSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Resolve drops every virtual event whose id is overridden. The input is not modified.
func Resolve(virtual []models.CalendarEvent, overrides OverrideSet) []models.CalendarEvent {
	out := make([]models.CalendarEvent, 0, len(virtual))
	for _, ev := range virtual {
		if overrides.Has(ev.ID) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// BirthdayPrefix starts every birthday id.
const BirthdayPrefix = "birthday-"

// IsVirtualID reports whether id names a generated occurrence whose date
// part is a real calendar date.
func IsVirtualID(id string) bool {
	for _, prefix := range []string{SundayServicePrefix, PrayerMeetingPrefix} {
		if date, ok := strings.CutPrefix(id, prefix); ok {
			_, valid := ParseDate(date)
			return valid
		}
	}
	rest, ok := strings.CutPrefix(id, BirthdayPrefix)
	if !ok {
		return false
	}
	member, year, ok := strings.Cut(rest, "-")
	return ok && isDigits(member) && len(year) == 4 && isDigits(year)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
