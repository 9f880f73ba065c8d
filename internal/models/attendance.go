package models

import "time"

// Attendance is a stored head count for an event or ad-hoc gathering.
type Attendance struct {
	ID             int64     `json:"id"`
	EventID        string    `json:"eventId"`
	EventType      string    `json:"eventType"`
	EventTitle     string    `json:"eventTitle"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Location       string    `json:"location"`
	Attendees      []int64   `json:"attendees"`
	TotalAttendees int       `json:"totalAttendees"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Attendance record sources.
const (
	SourceEvent      = "event"
	SourceAttendance = "attendance"
	SourceMinute     = "minute"
)

// AttendanceRecord is one row of the aggregated attendance history.
type AttendanceRecord struct {
	ID                string  `json:"id"`
	Source            string  `json:"source"`
	EventID           string  `json:"eventId,omitempty"`
	EventType         string  `json:"eventType"`
	EventTitle        string  `json:"eventTitle"`
	Date              string  `json:"date"`
	Time              string  `json:"time"`
	Location          string  `json:"location"`
	Attendees         []int64 `json:"attendees"`
	TotalAttendees    int     `json:"totalAttendees"`
	ExpectedAttendees int     `json:"expectedAttendees"`
	Notes             string  `json:"notes,omitempty"`
}
