package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/validation"
)

// AttendanceService records head counts and builds the attendance history.
type AttendanceService struct {
	repo     *repository.AttendanceRepository
	minutes  *MinutesService
	calendar *CalendarService
	refresh  Refresher
}

// NewAttendanceService creates a new attendance service
func NewAttendanceService(repo *repository.AttendanceRepository, minutes *MinutesService, cal *CalendarService, refresh Refresher) *AttendanceService {
	return &AttendanceService{repo: repo, minutes: minutes, calendar: cal, refresh: refresherOrNoop(refresh)}
}

// List returns stored records, newest first.
func (s *AttendanceService) List(ctx context.Context) ([]models.Attendance, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	return records, nil
}

// Get returns a record or ErrRecordNotFound.
func (s *AttendanceService) Get(ctx context.Context, id int64) (*models.Attendance, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	if a == nil {
		return nil, ErrRecordNotFound
	}
	return a, nil
}

// The head count defaults to the number of named attendees.
func normalizeAttendance(a *models.Attendance) {
	if a.Attendees == nil {
		a.Attendees = []int64{}
	}
	if a.TotalAttendees == 0 {
		a.TotalAttendees = len(a.Attendees)
	}
}

// Create stores a new record.
func (s *AttendanceService) Create(ctx context.Context, a *models.Attendance) error {
	a.ID = 0
	normalizeAttendance(a)
	if err := validation.ValidateAttendance(a); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	s.refresh.Refresh(FeedAttendance)
	return nil
}

// Update replaces an existing record.
func (s *AttendanceService) Update(ctx context.Context, a *models.Attendance) error {
	if _, err := s.Get(ctx, a.ID); err != nil {
		return err
	}
	normalizeAttendance(a)
	if err := validation.ValidateAttendance(a); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	s.refresh.Refresh(FeedAttendance)
	return nil
}

// Delete removes a record.
func (s *AttendanceService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	s.refresh.Refresh(FeedAttendance)
	return nil
}

// History merges three sources, newest first:
//   - stored records, tagged "event" when they point at a known event;
//   - minutes dated today or earlier, counting their attendee list;
//   - persisted events dated today or earlier that have no record yet.
func (s *AttendanceService) History(ctx context.Context) ([]models.AttendanceRecord, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	minutes, err := s.minutes.List(ctx)
	if err != nil {
		return nil, err
	}
	in, err := s.calendar.input(ctx)
	if err != nil {
		return nil, err
	}
	events := in.Events
	today := calendar.FormatDate(calendar.Today(in.Now))

	byID := make(map[string]models.Event, len(events))
	for _, e := range events {
		byID[strconv.FormatInt(e.ID, 10)] = e
	}
	var linked []string
	for _, a := range records {
		if _, ok := byID[a.EventID]; !ok && calendar.IsVirtualID(a.EventID) {
			linked = append(linked, a.EventID)
		}
	}
	occurrences := calendar.OccurrenceIndex(in, linked...)
	recorded := make(map[string]bool, len(records))

	out := make([]models.AttendanceRecord, 0, len(records)+len(minutes))
	for _, a := range records {
		rec := models.AttendanceRecord{
			ID:             strconv.FormatInt(a.ID, 10),
			Source:         models.SourceAttendance,
			EventID:        a.EventID,
			EventType:      a.EventType,
			EventTitle:     a.EventTitle,
			Date:           a.Date,
			Time:           a.Time,
			Location:       a.Location,
			Attendees:      a.Attendees,
			TotalAttendees: a.TotalAttendees,
			Notes:          a.Notes,
		}
		if a.EventID != "" {
			recorded[a.EventID] = true
			if expected, ok := expectedFor(byID, occurrences, a.EventID); ok {
				rec.Source = models.SourceEvent
				rec.ExpectedAttendees = expected
			}
		}
		out = append(out, rec)
	}

	for _, m := range minutes {
		if m.Date == "" || m.Date > today {
			continue
		}
		title := m.Title
		if title == "" {
			title = "Meeting"
		}
		id := strconv.FormatInt(m.ID, 10)
		out = append(out, models.AttendanceRecord{
			ID:             "minute-" + id,
			Source:         models.SourceMinute,
			EventID:        id,
			EventType:      models.EventTypeMeeting,
			EventTitle:     title,
			Date:           m.Date,
			Time:           m.StartTime,
			Location:       m.Location,
			Attendees:      m.Attendees,
			TotalAttendees: len(m.Attendees),
		})
	}

	for _, e := range events {
		id := strconv.FormatInt(e.ID, 10)
		if e.IsCancelled || e.Date == "" || e.Date > today || recorded[id] {
			continue
		}
		out = append(out, models.AttendanceRecord{
			ID:                "event-" + id,
			Source:            models.SourceEvent,
			EventID:           id,
			EventType:         e.Type,
			EventTitle:        e.Title,
			Date:              e.Date,
			Time:              e.Time,
			Location:          e.Location,
			Attendees:         []int64{},
			ExpectedAttendees: e.Attendees,
			Notes:             e.Description,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

// expectedFor resolves the expected head count of a linked event, which may
// be persisted or a generated occurrence.
func expectedFor(byID map[string]models.Event, occurrences map[string]models.CalendarEvent, eventID string) (int, bool) {
	if e, ok := byID[eventID]; ok {
		return e.Attendees, true
	}
	occ, ok := occurrences[eventID]
	return occ.Attendees, ok
}
