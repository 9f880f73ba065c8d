package calendar

import (
	"fmt"
	"sort"
	"time"

	"churchadmin/internal/models"
)

// BirthdayID is the virtual id of a member's birthday in year.
func BirthdayID(memberID int64, year int) string {
	return fmt.Sprintf("%s%d-%d", BirthdayPrefix, memberID, year)
}

// Birthdays emits one birthday event per member with a valid date of birth,
// dated in year. Members with a malformed dateOfBirth are skipped.
// A Feb 29 birthday falls on Feb 28 in common years.
func Birthdays(members []models.Member, year int) []models.CalendarEvent {
	var out []models.CalendarEvent
	for i := range members {
		m := &members[i]
		if m.DateOfBirth == "" {
			continue
		}
		born, ok := ParseDate(m.DateOfBirth)
		if !ok {
			continue
		}

		day := born.Day()
		if last := daysIn(year, born.Month()); day > last {
			day = last
		}
		date := time.Date(year, born.Month(), day, 0, 0, 0, 0, time.UTC)
		turning := year - born.Year()
		memberID := m.ID

		out = append(out, models.CalendarEvent{
			ID:            BirthdayID(m.ID, year),
			Title:         m.DisplayName() + "'s Birthday",
			Type:          models.EventTypeCelebration,
			Date:          FormatDate(date),
			Time:          "06:00",
			Description:   fmt.Sprintf("%s turns %d years old!", m.FullName(), turning),
			Icon:          "Cake",
			IsVirtual:     true,
			IsRecurring:   true,
			RecurringType: "yearly",
			IsBirthday:    true,
			MemberID:      &memberID,
			MemberName:    m.DisplayName(),
			TurningAge:    turning,
		})
	}
	return out
}

// UpcomingBirthdays returns birthdays dated from today through today+days
// inclusive, sorted ascending. A window that crosses New Year includes the
// following year's birthdays.
func UpcomingBirthdays(members []models.Member, overrides OverrideSet, now time.Time, days int) []models.CalendarEvent {
	if days < 0 {
		return nil
	}
	today := Today(now)
	end := today.AddDate(0, 0, days)

	candidates := Resolve(Birthdays(members, today.Year()), overrides)
	for y := today.Year() + 1; y <= end.Year(); y++ {
		candidates = append(candidates, Resolve(Birthdays(members, y), overrides)...)
	}

	var out []models.CalendarEvent
	for _, ev := range candidates {
		d, ok := ParseDate(ev.Date)
		if !ok || d.Before(today) || d.After(end) {
			continue
		}
		out = append(out, ev)
	}
	SortEvents(out)
	return out
}

// TodaysBirthdays returns the birthdays that fall exactly on today.
func TodaysBirthdays(members []models.Member, overrides OverrideSet, now time.Time) []models.CalendarEvent {
	return UpcomingBirthdays(members, overrides, now, 0)
}

// BirthdaysForMonth returns the birthdays of a given month, sorted by day.
func BirthdaysForMonth(members []models.Member, overrides OverrideSet, year int, month time.Month) []models.CalendarEvent {
	out := ForMonth(Resolve(Birthdays(members, year), overrides), year, month)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
