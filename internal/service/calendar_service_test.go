package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
)

func containsID(events []models.CalendarEvent, id string) bool {
	for _, ev := range events {
		if ev.ID == id {
			return true
		}
	}
	return false
}

func TestEventServiceOverrideUniqueness(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	first := &models.Event{Title: "Moved service", Date: "2024-06-02", Time: "10:00", OverrideOf: "sunday-service-2024-06-02"}
	require.NoError(t, s.events.Create(ctx, first))
	assert.True(t, first.IsOverride)

	second := &models.Event{Title: "Again", Date: "2024-06-02", OverrideOf: "sunday-service-2024-06-02"}
	assert.ErrorIs(t, s.events.Create(ctx, second), ErrOverrideExists)

	plain := &models.Event{Title: "Picnic", Date: "2024-06-15"}
	require.NoError(t, s.events.Create(ctx, plain))
	assert.Equal(t, models.DefaultEventType, plain.Type)
	assert.Equal(t, models.DefaultEventTime, plain.Time)

	plain.OverrideOf = "sunday-service-2024-06-02"
	assert.ErrorIs(t, s.events.Update(ctx, plain), ErrOverrideExists)
}

func TestCalendarServiceCancelAndRestoreOccurrence(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)
	const id = "sunday-service-2024-06-09"

	events, err := s.calendar.Events(ctx)
	require.NoError(t, err)
	require.True(t, containsID(events, id))

	cancelled, err := s.calendar.CancelOccurrence(ctx, id)
	require.NoError(t, err)
	assert.True(t, cancelled.IsCancelled)
	assert.Equal(t, "2024-06-09", cancelled.Date)

	events, err = s.calendar.Events(ctx)
	require.NoError(t, err)
	assert.False(t, containsID(events, id))
	for _, ev := range events {
		assert.NotEqual(t, cancelled.ID, ev.EventID, "cancelled overrides are not shown")
	}

	_, err = s.calendar.CancelOccurrence(ctx, id)
	assert.ErrorIs(t, err, ErrOverrideExists)

	require.NoError(t, s.events.RestoreOccurrence(ctx, id))
	events, err = s.calendar.Events(ctx)
	require.NoError(t, err)
	assert.True(t, containsID(events, id))

	_, err = s.calendar.CancelOccurrence(ctx, "sunday-service-2024-06-10")
	assert.ErrorIs(t, err, ErrNotAnOccurrence)
}

func TestCalendarServiceEditOccurrence(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	edited, err := s.calendar.EditOccurrence(ctx, "prayer-meeting-2024-06-12", models.Event{Time: "20:00", Location: "Fellowship hall"})
	require.NoError(t, err)
	assert.Equal(t, "Online Prayer Meeting", edited.Title)
	assert.Equal(t, "20:00", edited.Time)
	assert.Equal(t, "Fellowship hall", edited.Location)

	month, err := s.calendar.Month(ctx, 2024, time.June)
	require.NoError(t, err)
	assert.False(t, containsID(month, "prayer-meeting-2024-06-12"))
	var replaced bool
	for _, ev := range month {
		if ev.EventID == edited.ID {
			replaced = true
			assert.Equal(t, "2024-06-12", ev.Date)
		}
	}
	assert.True(t, replaced)
}

func TestCalendarServiceUpcomingAndBirthdays(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)
	require.NoError(t, s.members.Create(ctx, &models.Member{FirstName: "Ana", LastName: "Reyes", DateOfBirth: "1990-06-05"}))
	require.NoError(t, s.members.Create(ctx, &models.Member{FirstName: "Ben", LastName: "Reyes", DateOfBirth: "1988-06-01"}))

	upcoming, err := s.calendar.Upcoming(ctx, calendar.UpcomingQuery{Days: 7})
	require.NoError(t, err)
	require.NotEmpty(t, upcoming)
	assert.Equal(t, "2024-06-01", upcoming[0].Date)
	for _, ev := range upcoming {
		if ev.Type == models.EventTypeWorship {
			assert.Equal(t, 2, ev.Attendees, "expected attendance is the member count")
		}
	}

	today, err := s.calendar.TodaysBirthdays(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "Ben's Birthday", today[0].Title)

	soon, err := s.calendar.UpcomingBirthdays(ctx, 30)
	require.NoError(t, err)
	assert.Len(t, soon, 2)

	inJune, err := s.calendar.BirthdaysForMonth(ctx, 2024, time.June)
	require.NoError(t, err)
	assert.Len(t, inJune, 2)

	types, err := s.calendar.EventTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, types, models.EventTypeCelebration)
}

func TestCalendarServiceGridSpansYears(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	cells, err := s.calendar.Grid(ctx, 2024, time.December)
	require.NoError(t, err)
	require.Len(t, cells, calendar.GridCells)

	last := cells[len(cells)-1]
	assert.Equal(t, "2025-01-11", last.Date)
	var nextYearService bool
	for _, c := range cells {
		if c.Date == "2025-01-05" {
			nextYearService = containsID(c.Events, "sunday-service-2025-01-05")
		}
	}
	assert.True(t, nextYearService)

	junGrid, err := s.calendar.Grid(ctx, 2024, time.June)
	require.NoError(t, err)
	for _, c := range junGrid {
		if c.Date == "2024-06-12" {
			assert.Equal(t, "Independence Day", c.Holiday)
		}
		if c.Date == "2024-06-01" {
			assert.True(t, c.IsToday)
		}
	}
}

func TestEventServicePresets(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	p := &models.EventPreset{Name: "Youth night", Title: "Youth Fellowship", Type: models.EventTypeFellowship, Time: "18:00"}
	require.NoError(t, s.events.CreatePreset(ctx, p))
	assert.Equal(t, models.DefaultEventIcon, p.Icon)

	e, err := s.events.CreateFromPreset(ctx, p.ID, "2024-06-21")
	require.NoError(t, err)
	assert.Equal(t, "Youth Fellowship", e.Title)
	assert.Equal(t, "18:00", e.Time)

	_, err = s.events.CreateFromPreset(ctx, 999, "2024-06-21")
	assert.ErrorIs(t, err, ErrPresetNotFound)

	require.NoError(t, s.events.DeletePreset(ctx, p.ID))
	presets, err := s.events.Presets(ctx)
	require.NoError(t, err)
	assert.Empty(t, presets)
	assert.Equal(t, 2, s.refresh.count(FeedPresets))
}

func TestCalendarServiceYearsReadsOnlyRange(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	old := &models.Event{Title: "Groundbreaking", Date: "2019-03-02"}
	require.NoError(t, s.events.Create(ctx, old))
	// Moved into the next year, so the override itself is outside 2024.
	moved, err := s.calendar.EditOccurrence(ctx, "sunday-service-2024-12-29", models.Event{Date: "2025-01-04"})
	require.NoError(t, err)

	events, err := s.calendar.Years(ctx, 2024, 2024)
	require.NoError(t, err)
	assert.False(t, containsID(events, "sunday-service-2024-12-29"), "moved occurrence stays hidden")
	for _, ev := range events {
		assert.NotEqual(t, old.ID, ev.EventID)
		assert.NotEqual(t, moved.ID, ev.EventID)
		assert.Equal(t, "2024", ev.Date[:4])
	}

	both, err := s.calendar.Years(ctx, 2024, 2025)
	require.NoError(t, err)
	var found bool
	for _, ev := range both {
		if ev.EventID == moved.ID {
			found = true
			assert.Equal(t, "2025-01-04", ev.Date)
		}
	}
	assert.True(t, found)
}
