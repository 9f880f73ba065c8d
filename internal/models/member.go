package models

import (
	"strings"
	"time"
)

// Member is a person in the church directory.
// Relatives maps a relation label ("spouse", "father", ...) to another member's id.
// The edges are directed and not guaranteed to be symmetric.
type Member struct {
	ID            int64            `json:"id"`
	FirstName     string           `json:"firstName"`
	LastName      string           `json:"lastName"`
	Nickname      string           `json:"nickname"`
	Sex           string           `json:"sex"`
	DateOfBirth   string           `json:"dateOfBirth"`
	Age           *int             `json:"age,omitempty"`
	CivilStatus   string           `json:"civilStatus"`
	Address       string           `json:"address"`
	ContactNumber string           `json:"contactNumber"`
	Occupation    string           `json:"occupation"`
	Relatives     map[string]int64 `json:"relatives"`
	Tags          []string         `json:"tags"`
	IsMember      bool             `json:"isMember"`
	FamilyRole    string           `json:"familyRole"`
	Image         string           `json:"image,omitempty"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

const (
	SexMale   = "Male"
	SexFemale = "Female"

	CivilStatusSingle = "Single"
)

// FullName returns "First Last".
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// DisplayName prefers the nickname over the first name.
func (m *Member) DisplayName() string {
	if m.Nickname != "" {
		return m.Nickname
	}
	return m.FirstName
}

// HasRelatives reports whether the member lists at least one relative.
func (m *Member) HasRelatives() bool {
	return len(m.Relatives) > 0
}

// AgeOrZero returns the stored age, or 0 when unknown.
func (m *Member) AgeOrZero() int {
	if m.Age == nil {
		return 0
	}
	return *m.Age
}
