package calendar

import (
	"sort"
	"strings"
	"time"

	"churchadmin/internal/models"
)

// Input is everything needed to build the calendar for one year.
type Input struct {
	Now      time.Time
	Members  []models.Member
	Events   []models.Event
	Settings Settings
	// Overrides only suppress occurrences and are never merged. They
	// cover edited overrides dated outside Events.
	Overrides []models.Event
}

// Build generates the virtual events for the year of in.Now, resolves
// overrides separately for each generator, and merges the result with the
// persisted events.
func Build(in Input) []models.CalendarEvent {
	return BuildRange(in, in.Now.Year(), in.Now.Year())
}

// BuildRange is Build over every year from first to last inclusive. The
// persisted events are merged once.
func BuildRange(in Input, first, last int) []models.CalendarEvent {
	overrides := Overrides(in.Events, in.Overrides)
	var virtual [][]models.CalendarEvent
	for year := first; year <= last; year++ {
		virtual = append(virtual, generate(in, year, overrides)...)
	}
	return Merge(in.Events, virtual...)
}

func generate(in Input, year int, overrides OverrideSet) [][]models.CalendarEvent {
	expected := len(in.Members)
	return [][]models.CalendarEvent{
		Resolve(SundayServices(year, expected, in.Settings), overrides),
		Resolve(PrayerMeetings(year, expected, in.Settings), overrides),
		Resolve(Birthdays(in.Members, year), overrides),
	}
}

// FindOccurrence regenerates the virtual event with the given id, ignoring
// overrides, so that an override can be built from it.
func FindOccurrence(in Input, id string) (models.CalendarEvent, bool) {
	ev, ok := OccurrenceIndex(in, id)[id]
	return ev, ok
}

// OccurrenceIndex generates, ignoring overrides, every virtual event of the
// years named by ids, keyed by id. Each year is generated once.
func OccurrenceIndex(in Input, ids ...string) map[string]models.CalendarEvent {
	years := make(map[int]bool)
	for _, id := range ids {
		if year, ok := occurrenceYear(id); ok {
			years[year] = true
		}
	}
	index := make(map[string]models.CalendarEvent)
	for year := range years {
		for _, group := range generate(in, year, nil) {
			for _, ev := range group {
				index[ev.ID] = ev
			}
		}
	}
	return index
}

func occurrenceYear(id string) (int, bool) {
	if !IsVirtualID(id) || len(id) < 4 {
		return 0, false
	}
	var digits string
	if strings.HasPrefix(id, BirthdayPrefix) {
		digits = id[len(id)-4:]
	} else {
		digits = id[len(id)-10 : len(id)-6]
	}
	year := 0
	for _, r := range digits {
		year = year*10 + int(r-'0')
	}
	return year, true
}

// Merge combines persisted events with already-resolved virtual events.
// Cancelled events are left out; they exist only to suppress an occurrence.
func Merge(events []models.Event, virtual ...[]models.CalendarEvent) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, e := range events {
		if e.IsCancelled {
			continue
		}
		out = append(out, models.FromEvent(e))
	}
	for _, v := range virtual {
		out = append(out, v...)
	}
	SortEvents(out)
	return out
}

// SortEvents orders events by date, then time, then id.
func SortEvents(events []models.CalendarEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Time != b.Time {
			return a.Time < b.Time
		}
		return a.ID < b.ID
	})
}

// ForMonth keeps only the events dated in the given month.
func ForMonth(events []models.CalendarEvent, year int, month time.Month) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range events {
		d, ok := ParseDate(ev.Date)
		if ok && d.Year() == year && d.Month() == month {
			out = append(out, ev)
		}
	}
	return out
}

// OnDate keeps only the events dated on date.
func OnDate(events []models.CalendarEvent, date string) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, ev := range events {
		if ev.Date == date {
			out = append(out, ev)
		}
	}
	return out
}

// UpcomingQuery narrows the upcoming-events list.
type UpcomingQuery struct {
	Days   int
	Types  []string
	Search string
	Limit  int
}

// DefaultUpcomingLimit caps the upcoming list when no limit is given.
const DefaultUpcomingLimit = 10

// Upcoming returns events dated from today through today+q.Days, optionally
// filtered by type and free text, sorted ascending and capped at q.Limit.
func Upcoming(events []models.CalendarEvent, now time.Time, q UpcomingQuery) []models.CalendarEvent {
	today := Today(now)
	end := today.AddDate(0, 0, q.Days)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}

	types := make(map[string]bool, len(q.Types))
	for _, t := range q.Types {
		types[t] = true
	}

	var out []models.CalendarEvent
	for _, ev := range events {
		d, ok := ParseDate(ev.Date)
		if !ok || d.Before(today) || d.After(end) {
			continue
		}
		if len(types) > 0 && !types[ev.Type] {
			continue
		}
		if !Matches(ev, q.Search) {
			continue
		}
		out = append(out, ev)
	}
	SortEvents(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Matches reports whether the event's title, location, type or description
// contains query, case-insensitively. An empty query matches everything.
func Matches(ev models.CalendarEvent, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	for _, field := range []string{ev.Title, ev.Location, ev.Type, ev.Description} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// EventTypes lists the distinct event types, sorted.
func EventTypes(events []models.CalendarEvent) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ev := range events {
		if ev.Type != "" && !seen[ev.Type] {
			seen[ev.Type] = true
			out = append(out, ev.Type)
		}
	}
	sort.Strings(out)
	return out
}
