package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"churchadmin/internal/calendar"
	"churchadmin/internal/ical"
	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/service"
)

// maxYearSpan bounds how many years one calendar request may generate.
const maxYearSpan = 5

// CalendarHandler serves the merged calendar: persisted events plus the
// generated services, prayer meetings and birthdays.
type CalendarHandler struct {
	calendar *service.CalendarService
	events   *service.EventService
	feed     ical.Feed
	notes    *notify.Queue
}

func NewCalendarHandler(cal *service.CalendarService, events *service.EventService, feed ical.Feed, notes *notify.Queue) *CalendarHandler {
	return &CalendarHandler{calendar: cal, events: events, feed: feed, notes: notes}
}

func queryInt(r *http.Request, name string, def int) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// yearMonth reads ?year and ?month, defaulting to the current month.
func (h *CalendarHandler) yearMonth(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	now := h.calendar.Now()
	year, ok1 := queryInt(r, "year", now.Year())
	month, ok2 := queryInt(r, "month", int(now.Month()))
	if !ok1 || !ok2 || month < 1 || month > 12 || year < 1 {
		respondWithError(w, http.StatusBadRequest, "Invalid year or month", "", nil)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// Events returns the calendar for ?from through ?to (years), defaulting to
// the current year.
func (h *CalendarHandler) Events(w http.ResponseWriter, r *http.Request) {
	year := h.calendar.Now().Year()
	from, ok1 := queryInt(r, "from", year)
	to, ok2 := queryInt(r, "to", from)
	if !ok1 || !ok2 || to < from || to-from >= maxYearSpan {
		respondWithError(w, http.StatusBadRequest, "Invalid year range", "", nil)
		return
	}
	events, err := h.calendar.Years(r.Context(), from, to)
	if err != nil {
		respondServiceError(w, err, "build calendar")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(w, r)
	if !ok {
		return
	}
	events, err := h.calendar.Month(r.Context(), year, month)
	if err != nil {
		respondServiceError(w, err, "build month")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (h *CalendarHandler) Grid(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.yearMonth(w, r)
	if !ok {
		return
	}
	cells, err := h.calendar.Grid(r.Context(), year, month)
	if err != nil {
		respondServiceError(w, err, "build grid")
		return
	}
	writeJSON(w, http.StatusOK, cells)
}

// Upcoming lists events in the next ?days (default 30), optionally filtered
// by ?types (comma separated) and ?search.
func (h *CalendarHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	days, ok1 := queryInt(r, "days", 30)
	limit, ok2 := queryInt(r, "limit", calendar.DefaultUpcomingLimit)
	if !ok1 || !ok2 || days < 0 || days > 366*maxYearSpan || limit < 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid days or limit", "", nil)
		return
	}
	q := calendar.UpcomingQuery{Days: days, Search: r.URL.Query().Get("search"), Limit: limit}
	if types := r.URL.Query().Get("types"); types != "" {
		q.Types = strings.Split(types, ",")
	}
	events, err := h.calendar.Upcoming(r.Context(), q)
	if err != nil {
		respondServiceError(w, err, "list upcoming events")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (h *CalendarHandler) Types(w http.ResponseWriter, r *http.Request) {
	types, err := h.calendar.EventTypes(r.Context())
	if err != nil {
		respondServiceError(w, err, "list event types")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(types))
}

// Birthdays returns today's birthdays with ?scope=today, a month's with
// ?scope=month (plus ?year and ?month), and otherwise the next ?days.
func (h *CalendarHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	var (
		events []models.CalendarEvent
		err    error
	)
	switch r.URL.Query().Get("scope") {
	case "today":
		events, err = h.calendar.TodaysBirthdays(r.Context())
	case "month":
		year, month, ok := h.yearMonth(w, r)
		if !ok {
			return
		}
		events, err = h.calendar.BirthdaysForMonth(r.Context(), year, month)
	case "", "upcoming":
		days, ok := queryInt(r, "days", 30)
		if !ok || days < 0 || days > 366 {
			respondWithError(w, http.StatusBadRequest, "Invalid days", "", nil)
			return
		}
		events, err = h.calendar.UpcomingBirthdays(r.Context(), days)
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown scope", "", nil)
		return
	}
	if err != nil {
		respondServiceError(w, err, "list birthdays")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

// Occurrence returns one generated occurrence as it would be shown without
// any override.
func (h *CalendarHandler) Occurrence(w http.ResponseWriter, r *http.Request) {
	occ, err := h.calendar.Occurrence(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "find occurrence")
		return
	}
	writeJSON(w, http.StatusOK, occ)
}

// EditOccurrence overrides one occurrence; blank fields keep their
// generated values.
func (h *CalendarHandler) EditOccurrence(w http.ResponseWriter, r *http.Request) {
	var patch models.Event
	if !decodeJSON(w, r, &patch) {
		return
	}
	e, err := h.calendar.EditOccurrence(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		respondServiceError(w, err, "edit occurrence")
		return
	}
	announce(h.notes, "Occurrence updated: "+e.Title)
	writeJSON(w, http.StatusCreated, e)
}

func (h *CalendarHandler) CancelOccurrence(w http.ResponseWriter, r *http.Request) {
	e, err := h.calendar.CancelOccurrence(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err, "cancel occurrence")
		return
	}
	announce(h.notes, "Occurrence cancelled: "+e.Title)
	writeJSON(w, http.StatusCreated, e)
}

// RestoreOccurrence removes the override so the generated event shows again.
func (h *CalendarHandler) RestoreOccurrence(w http.ResponseWriter, r *http.Request) {
	if err := h.events.RestoreOccurrence(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, err, "restore occurrence")
		return
	}
	announce(h.notes, "Occurrence restored")
	w.WriteHeader(http.StatusNoContent)
}

// ICS serves last year through next year as an iCalendar feed.
func (h *CalendarHandler) ICS(w http.ResponseWriter, r *http.Request) {
	now := h.calendar.Now()
	events, err := h.calendar.Years(r.Context(), now.Year()-1, now.Year()+1)
	if err != nil {
		respondServiceError(w, err, "build calendar feed")
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="calendar.ics"`)
	if err := h.feed.Write(w, events, now); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to write calendar feed", err)
	}
}
