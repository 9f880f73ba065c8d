package models

import (
	"strconv"
	"time"
)

// Event types used by the calendar.
const (
	EventTypeWorship     = "worship"
	EventTypePrayer      = "prayer"
	EventTypeCelebration = "celebration"
	EventTypeMeeting     = "meeting"
	EventTypeFellowship  = "fellowship"
	EventTypeOutreach    = "outreach"
)

const (
	DefaultEventType = EventTypeWorship
	DefaultEventTime = "09:00"
	DefaultEventIcon = "Calendar"
)

// Event is a persisted calendar entry.
//
// An Event with OverrideOf set replaces the virtual occurrence with that id.
// When IsCancelled is also set the occurrence is suppressed and nothing is shown.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Attendees   int       `json:"attendees"`
	Icon        string    `json:"icon"`
	OverrideOf  string    `json:"overrideOf,omitempty"`
	IsOverride  bool      `json:"isOverride"`
	IsCancelled bool      `json:"isCancelled"`
	MemberID    *int64    `json:"memberId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ApplyDefaults fills in the type, time and icon when they are blank.
func (e *Event) ApplyDefaults() {
	if e.Type == "" {
		e.Type = DefaultEventType
	}
	if e.Time == "" {
		e.Time = DefaultEventTime
	}
	if e.Icon == "" {
		e.Icon = DefaultEventIcon
	}
	if e.OverrideOf != "" {
		e.IsOverride = true
	}
}

// EventPreset is a reusable template for creating events.
type EventPreset struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CalendarEvent is the merged calendar view of persisted and virtual events.
// Virtual events carry a deterministic string id and EventID 0.
type CalendarEvent struct {
	ID            string `json:"id"`
	EventID       int64  `json:"eventId,omitempty"`
	Title         string `json:"title"`
	Type          string `json:"type"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	Description   string `json:"description"`
	Attendees     int    `json:"attendees"`
	Icon          string `json:"icon"`
	IsVirtual     bool   `json:"isVirtual"`
	IsRecurring   bool   `json:"isRecurring"`
	RecurringType string `json:"recurringType,omitempty"`
	IsBirthday    bool   `json:"isBirthday"`
	MemberID      *int64 `json:"memberId,omitempty"`
	MemberName    string `json:"memberName,omitempty"`
	TurningAge    int    `json:"turningAge,omitempty"`
	OverrideOf    string `json:"overrideOf,omitempty"`
	IsOverride    bool   `json:"isOverride"`
	IsCancelled   bool   `json:"isCancelled"`
}

// FromEvent converts a persisted event into its calendar representation.
func FromEvent(e Event) CalendarEvent {
	return CalendarEvent{
		ID:          strconv.FormatInt(e.ID, 10),
		EventID:     e.ID,
		Title:       e.Title,
		Type:        e.Type,
		Date:        e.Date,
		Time:        e.Time,
		Location:    e.Location,
		Description: e.Description,
		Attendees:   e.Attendees,
		Icon:        e.Icon,
		MemberID:    e.MemberID,
		OverrideOf:  e.OverrideOf,
		IsOverride:  e.IsOverride,
		IsCancelled: e.IsCancelled,
	}
}
