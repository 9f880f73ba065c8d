package calendar

import (
	"time"

	"churchadmin/internal/models"
)

// GridCells is the number of cells in a month view: six weeks of seven days.
const GridCells = 42

// Cell is one day of a month view.
type Cell struct {
	Date         string                 `json:"date"`
	Day          int                    `json:"day"`
	CurrentMonth bool                   `json:"isCurrentMonth"`
	IsToday      bool                   `json:"isToday"`
	Holiday      string                 `json:"holiday,omitempty"`
	Events       []models.CalendarEvent `json:"events"`
}

// MonthGrid lays out a Sunday-first six-week grid for the given month,
// padded with the trailing days of the previous month and the leading days
// of the next. holidays maps ISO dates to holiday names and may be nil.
func MonthGrid(year int, month time.Month, now time.Time, events []models.CalendarEvent, holidays map[string]string) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	today := FormatDate(Today(now))

	byDate := make(map[string][]models.CalendarEvent)
	for _, ev := range events {
		byDate[ev.Date] = append(byDate[ev.Date], ev)
	}

	cells := make([]Cell, 0, GridCells)
	for i := 0; i < GridCells; i++ {
		d := start.AddDate(0, 0, i)
		date := FormatDate(d)
		dayEvents := byDate[date]
		if dayEvents == nil {
			dayEvents = []models.CalendarEvent{}
		}
		cells = append(cells, Cell{
			Date:         date,
			Day:          d.Day(),
			CurrentMonth: d.Month() == month,
			IsToday:      date == today,
			Holiday:      holidays[date],
			Events:       dayEvents,
		})
	}
	return cells
}
