// Package ical renders the merged church calendar as an iCalendar feed.
package ical

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
)

// DefaultDuration is used for timed events; the calendar does not track end times.
const DefaultDuration = time.Hour

// Feed describes the calendar being published.
type Feed struct {
	Name     string
	Domain   string
	Location *time.Location
}

// UID returns the stable iCalendar UID of a calendar entry.
func (f Feed) UID(ev models.CalendarEvent) string {
	domain := f.Domain
	if domain == "" {
		domain = "churchadmin"
	}
	return ev.ID + "@" + domain
}

// Build converts calendar entries into a VCALENDAR. Cancelled overrides and
// entries with unparseable dates are skipped.
func (f Feed) Build(events []models.CalendarEvent, stamp time.Time) *ical.Calendar {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//churchadmin//calendar//EN")
	if f.Name != "" {
		cal.SetXWRCalName(f.Name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, ev := range events {
		if ev.IsCancelled {
			continue
		}
		day, ok := calendar.ParseDate(ev.Date)
		if !ok {
			continue
		}

		vev := cal.AddEvent(f.UID(ev))
		vev.SetDtStampTime(stamp.UTC())
		vev.SetSummary(ev.Title)
		if ev.Location != "" {
			vev.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			vev.SetDescription(ev.Description)
		}
		if ev.Type != "" {
			vev.AddProperty(ical.ComponentPropertyCategories, ev.Type)
		}

		start, timed := startOf(day, ev.Time, loc)
		if ev.IsBirthday || !timed {
			vev.SetAllDayStartAt(day)
			vev.SetAllDayEndAt(day.AddDate(0, 0, 1))
			continue
		}
		vev.SetStartAt(start)
		vev.SetEndAt(start.Add(DefaultDuration))
	}
	return cal
}

// Write serialises the feed to w.
func (f Feed) Write(w io.Writer, events []models.CalendarEvent, stamp time.Time) error {
	if err := f.Build(events, stamp).SerializeTo(w); err != nil {
		return fmt.Errorf("failed to write calendar feed: %w", err)
	}
	return nil
}

func startOf(day time.Time, hhmm string, loc *time.Location) (time.Time, bool) {
	if hhmm == "" {
		return day, false
	}
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return day, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), true
}
