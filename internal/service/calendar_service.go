package service

import (
	"context"
	"fmt"
	"time"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
)

// CalendarService merges persisted events with generated Sunday services,
// prayer meetings and birthdays.
type CalendarService struct {
	members  *MemberService
	events   *EventService
	settings calendar.Settings
	holidays map[string]string
	now      Clock
}

// NewCalendarService creates a new calendar service. holidays maps ISO dates
// to holiday names and may be nil.
func NewCalendarService(members *MemberService, events *EventService, settings calendar.Settings, holidays map[string]string, now Clock) *CalendarService {
	return &CalendarService{members: members, events: events, settings: settings, holidays: holidays, now: clockOrNow(now)}
}

// Now returns the service clock.
func (s *CalendarService) Now() time.Time {
	return s.now()
}

func (s *CalendarService) input(ctx context.Context) (calendar.Input, error) {
	members, err := s.members.All(ctx)
	if err != nil {
		return calendar.Input{}, err
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return calendar.Input{}, err
	}
	return calendar.Input{Now: s.now(), Members: members, Events: events, Settings: s.settings}, nil
}

// rangeInput reads only the events dated within the years first..last, plus
// the overrides needed to hide occurrences edited onto other dates.
func (s *CalendarService) rangeInput(ctx context.Context, first, last int) (calendar.Input, error) {
	members, err := s.members.All(ctx)
	if err != nil {
		return calendar.Input{}, err
	}
	events, err := s.events.Between(ctx, fmt.Sprintf("%04d-01-01", first), fmt.Sprintf("%04d-12-31", last))
	if err != nil {
		return calendar.Input{}, err
	}
	overrides, err := s.events.Overrides(ctx)
	if err != nil {
		return calendar.Input{}, err
	}
	return calendar.Input{Now: s.now(), Members: members, Events: events, Overrides: overrides, Settings: s.settings}, nil
}

// Events returns the merged calendar for the current year.
func (s *CalendarService) Events(ctx context.Context) ([]models.CalendarEvent, error) {
	year := s.now().Year()
	return s.Years(ctx, year, year)
}

// Years returns the merged calendar for every year from first to last.
// Persisted events dated outside those years are left out.
func (s *CalendarService) Years(ctx context.Context, first, last int) ([]models.CalendarEvent, error) {
	if last < first {
		return nil, fmt.Errorf("invalid year range %d-%d", first, last)
	}
	in, err := s.rangeInput(ctx, first, last)
	if err != nil {
		return nil, err
	}
	return calendar.BuildRange(in, first, last), nil
}

// Month returns the events of one month.
func (s *CalendarService) Month(ctx context.Context, year int, month time.Month) ([]models.CalendarEvent, error) {
	events, err := s.Years(ctx, year, year)
	if err != nil {
		return nil, err
	}
	return calendar.ForMonth(events, year, month), nil
}

// Grid returns the 42-cell month view. The padding days may belong to the
// neighbouring years, so those are generated too.
func (s *CalendarService) Grid(ctx context.Context, year int, month time.Month) ([]calendar.Cell, error) {
	first, last := year, year
	if month == time.January {
		first--
	}
	if month == time.December {
		last++
	}
	events, err := s.Years(ctx, first, last)
	if err != nil {
		return nil, err
	}
	return calendar.MonthGrid(year, month, s.now(), events, s.holidays), nil
}

// Upcoming returns the next events matching q.
func (s *CalendarService) Upcoming(ctx context.Context, q calendar.UpcomingQuery) ([]models.CalendarEvent, error) {
	now := s.now()
	end := calendar.Today(now).AddDate(0, 0, max(q.Days, 0))
	events, err := s.Years(ctx, now.Year(), end.Year())
	if err != nil {
		return nil, err
	}
	return calendar.Upcoming(events, now, q), nil
}

// EventTypes lists the types present in the current year's calendar.
func (s *CalendarService) EventTypes(ctx context.Context) ([]string, error) {
	events, err := s.Events(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.EventTypes(events), nil
}

func (s *CalendarService) birthdayInput(ctx context.Context) ([]models.Member, calendar.OverrideSet, error) {
	in, err := s.input(ctx)
	if err != nil {
		return nil, nil, err
	}
	return in.Members, calendar.Overrides(in.Events), nil
}

// UpcomingBirthdays returns birthdays in the next days days, today included.
func (s *CalendarService) UpcomingBirthdays(ctx context.Context, days int) ([]models.CalendarEvent, error) {
	members, overrides, err := s.birthdayInput(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.UpcomingBirthdays(members, overrides, s.now(), days), nil
}

// TodaysBirthdays returns the birthdays that fall today.
func (s *CalendarService) TodaysBirthdays(ctx context.Context) ([]models.CalendarEvent, error) {
	members, overrides, err := s.birthdayInput(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.TodaysBirthdays(members, overrides, s.now()), nil
}

// BirthdaysForMonth returns the birthdays of a month.
func (s *CalendarService) BirthdaysForMonth(ctx context.Context, year int, month time.Month) ([]models.CalendarEvent, error) {
	members, overrides, err := s.birthdayInput(ctx)
	if err != nil {
		return nil, err
	}
	return calendar.BirthdaysForMonth(members, overrides, year, month), nil
}

// Occurrence regenerates the virtual event with the given id.
func (s *CalendarService) Occurrence(ctx context.Context, id string) (models.CalendarEvent, error) {
	in, err := s.input(ctx)
	if err != nil {
		return models.CalendarEvent{}, err
	}
	ev, ok := calendar.FindOccurrence(in, id)
	if !ok {
		return models.CalendarEvent{}, ErrNotAnOccurrence
	}
	return ev, nil
}

// CancelOccurrence hides one virtual occurrence by storing a cancelled override.
func (s *CalendarService) CancelOccurrence(ctx context.Context, id string) (*models.Event, error) {
	occ, err := s.Occurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	e := overrideFrom(occ)
	e.IsCancelled = true
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// EditOccurrence replaces one virtual occurrence with a persisted event.
// Blank fields of patch are taken from the occurrence.
func (s *CalendarService) EditOccurrence(ctx context.Context, id string, patch models.Event) (*models.Event, error) {
	occ, err := s.Occurrence(ctx, id)
	if err != nil {
		return nil, err
	}
	e := overrideFrom(occ)
	if patch.Title != "" {
		e.Title = patch.Title
	}
	if patch.Type != "" {
		e.Type = patch.Type
	}
	if patch.Date != "" {
		e.Date = patch.Date
	}
	if patch.Time != "" {
		e.Time = patch.Time
	}
	if patch.Location != "" {
		e.Location = patch.Location
	}
	if patch.Description != "" {
		e.Description = patch.Description
	}
	if patch.Icon != "" {
		e.Icon = patch.Icon
	}
	if patch.Attendees > 0 {
		e.Attendees = patch.Attendees
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func overrideFrom(occ models.CalendarEvent) *models.Event {
	return &models.Event{
		Title:       occ.Title,
		Type:        occ.Type,
		Date:        occ.Date,
		Time:        occ.Time,
		Location:    occ.Location,
		Description: occ.Description,
		Attendees:   occ.Attendees,
		Icon:        occ.Icon,
		OverrideOf:  occ.ID,
		IsOverride:  true,
		MemberID:    occ.MemberID,
	}
}
