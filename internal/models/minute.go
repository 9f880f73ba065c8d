package models

import "time"

// Minute records the proceedings of a meeting.
type Minute struct {
	ID        int64           `json:"id"`
	Title     string          `json:"title"`
	Date      string          `json:"date"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime"`
	Location  string          `json:"location"`
	Attendees []int64         `json:"attendees"`
	Content   string          `json:"content"`
	Structure MinuteStructure `json:"structure"`
	CreatedBy string          `json:"createdBy"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// MinuteStructure is the structured body of a minute.
type MinuteStructure struct {
	Agenda         []AgendaItem `json:"agenda"`
	Discussions    []string     `json:"discussions"`
	Decisions      []string     `json:"decisions"`
	ActionItems    []string     `json:"actionItems"`
	OverallSummary string       `json:"overallSummary"`
	RawDiscussions string       `json:"rawDiscussions"`
}

// AgendaItem holds raw notes for one agenda topic and their enhanced form.
type AgendaItem struct {
	Title    string `json:"title"`
	RawNotes string `json:"rawNotes"`
	Enhanced string `json:"enhanced,omitempty"`
}
