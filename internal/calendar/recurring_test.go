package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/models"
)

func countWeekdays(year int, wd time.Weekday, keep func(time.Time) bool) int {
	n := 0
	for d := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC); d.Year() == year; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == wd && keep(d) {
			n++
		}
	}
	return n
}

func TestSundayServicesCoverEverySunday(t *testing.T) {
	for year := 2000; year <= 2040; year++ {
		events := SundayServices(year, 0, DefaultSettings)
		want := countWeekdays(year, time.Sunday, func(time.Time) bool { return true })

		require.Len(t, events, want, "year %d", year)
		assert.True(t, len(events) == 52 || len(events) == 53)
		for _, ev := range events {
			d, ok := ParseDate(ev.Date)
			require.True(t, ok)
			assert.Equal(t, time.Sunday, d.Weekday())
			assert.Equal(t, year, d.Year())
			assert.Equal(t, SundayServiceID(ev.Date), ev.ID)
		}
	}
}

func TestSundayServicesKnownYears(t *testing.T) {
	assert.Len(t, SundayServices(2023, 0, DefaultSettings), 53)
	assert.Len(t, SundayServices(2024, 0, DefaultSettings), 52)

	events := SundayServices(2023, 0, DefaultSettings)
	assert.Equal(t, "sunday-service-2023-01-01", events[0].ID)
	assert.Equal(t, "sunday-service-2023-12-31", events[len(events)-1].ID)
}

func TestPrayerMeetingsSkipFirstWednesday(t *testing.T) {
	for year := 2000; year <= 2040; year++ {
		events := PrayerMeetings(year, 0, DefaultSettings)
		want := countWeekdays(year, time.Wednesday, func(d time.Time) bool { return d.Day() > 7 })
		require.Len(t, events, want, "year %d", year)

		for _, ev := range events {
			d, ok := ParseDate(ev.Date)
			require.True(t, ok)
			assert.Equal(t, time.Wednesday, d.Weekday())
			assert.Greater(t, d.Day(), 7, "first Wednesday emitted: %s", ev.Date)
			assert.GreaterOrEqual(t, OccurrenceInMonth(d.Day()), 2)
		}
	}
}

func TestRecurringEventFields(t *testing.T) {
	s := Settings{ServiceLocation: "Main Hall", PrayerLocation: "Zoom"}

	sunday := SundayServices(2024, 120, s)[0]
	assert.Equal(t, "Sunday Service", sunday.Title)
	assert.Equal(t, models.EventTypeWorship, sunday.Type)
	assert.Equal(t, "09:00", sunday.Time)
	assert.Equal(t, "Main Hall", sunday.Location)
	assert.Equal(t, 120, sunday.Attendees)
	assert.True(t, sunday.IsVirtual)
	assert.True(t, sunday.IsRecurring)

	prayer := PrayerMeetings(2024, 120, s)[0]
	assert.Equal(t, "prayer-meeting-2024-01-10", prayer.ID)
	assert.Equal(t, models.EventTypePrayer, prayer.Type)
	assert.Equal(t, "19:00", prayer.Time)
	assert.Equal(t, "Zoom", prayer.Location)
}

func TestOccurrenceInMonth(t *testing.T) {
	tests := []struct {
		day  int
		want int
	}{
		{1, 1}, {7, 1}, {8, 2}, {14, 2}, {15, 3}, {21, 3}, {22, 4}, {28, 4}, {29, 5}, {31, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OccurrenceInMonth(tt.day), "day %d", tt.day)
	}
}

func TestOverrideSuppressesExactlyOneSunday(t *testing.T) {
	events := []models.Event{{ID: 9, Title: "Cancelled", Date: "2024-06-02", OverrideOf: "sunday-service-2024-06-02", IsCancelled: true}}

	all := SundayServices(2024, 0, DefaultSettings)
	resolved := Resolve(all, Overrides(events))

	require.Len(t, resolved, len(all)-1)
	for _, ev := range resolved {
		assert.NotEqual(t, "sunday-service-2024-06-02", ev.ID)
	}
	assert.Equal(t, "sunday-service-2024-05-26", all[20].ID)
	assert.Len(t, all, 52, "resolve must not mutate the input")
}
