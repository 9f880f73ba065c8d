package models

import "time"

const (
	PrayerStatusActive   = "active"
	PrayerStatusAnswered = "answered"
	PrayerStatusOngoing  = "ongoing"

	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// PrayerConcern is a prayer request tracked by the church.
type PrayerConcern struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	MemberID    *int64    `json:"memberId,omitempty"`
	MemberName  string    `json:"memberName"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	Date        string    `json:"date"`
	Notes       string    `json:"notes"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
