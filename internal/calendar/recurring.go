package calendar

import (
	"time"

	"github.com/teambition/rrule-go"

	"churchadmin/internal/models"
)

const (
	SundayServicePrefix = "sunday-service-"
	PrayerMeetingPrefix = "prayer-meeting-"
)

// Settings carries the church-specific details stamped onto generated events.
type Settings struct {
	ServiceLocation string
	PrayerLocation  string
}

// DefaultSettings are used when no configuration is supplied.
var DefaultSettings = Settings{
	ServiceLocation: "UEC Canubing II",
	PrayerLocation:  "Online (Zoom/Google Meet)",
}

// SundayServiceID is the virtual id of the service held on date.
func SundayServiceID(date string) string { return SundayServicePrefix + date }

// PrayerMeetingID is the virtual id of the prayer meeting held on date.
func PrayerMeetingID(date string) string { return PrayerMeetingPrefix + date }

// SundayServices emits one service for every Sunday from Jan 1 to Dec 31 of year.
func SundayServices(year, expectedAttendees int, s Settings) []models.CalendarEvent {
	days := weekdaysInYear(year, rrule.SU)
	out := make([]models.CalendarEvent, 0, len(days))
	for _, d := range days {
		date := FormatDate(d)
		out = append(out, models.CalendarEvent{
			ID:            SundayServiceID(date),
			Title:         "Sunday Service",
			Type:          models.EventTypeWorship,
			Date:          date,
			Time:          "09:00",
			Location:      s.ServiceLocation,
			Description:   "Weekly Sunday worship service. Come and join us in praising the Lord!",
			Attendees:     expectedAttendees,
			Icon:          "Church",
			IsVirtual:     true,
			IsRecurring:   true,
			RecurringType: "weekly",
		})
	}
	return out
}

// PrayerMeetings emits a meeting on every Wednesday of year except the first
// Wednesday of each month.
func PrayerMeetings(year, expectedAttendees int, s Settings) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, d := range weekdaysInYear(year, rrule.WE) {
		if OccurrenceInMonth(d.Day()) < 2 {
			continue
		}
		date := FormatDate(d)
		out = append(out, models.CalendarEvent{
			ID:            PrayerMeetingID(date),
			Title:         "Online Prayer Meeting",
			Type:          models.EventTypePrayer,
			Date:          date,
			Time:          "19:00",
			Location:      s.PrayerLocation,
			Description:   "Weekly online prayer meeting. Join us to pray together as a community.",
			Attendees:     expectedAttendees,
			Icon:          "HandHeart",
			IsVirtual:     true,
			IsRecurring:   true,
			RecurringType: "weekly",
		})
	}
	return out
}

// weekdaysInYear expands a weekly rule bounded to a single calendar year.
func weekdaysInYear(year int, day rrule.Weekday) []time.Time {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Dtstart:   start,
		Until:     end,
		Byweekday: []rrule.Weekday{day},
	})
	if err != nil {
		return nil
	}
	return rule.Between(start, end, true)
}
