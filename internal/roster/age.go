package roster

import (
	"strings"
	"time"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
)

// AgeFromDate returns the age in whole years on now, or false when dob is
// missing or malformed. The age drops by one until this year's birthday.
func AgeFromDate(dob string, now time.Time) (int, bool) {
	born, ok := calendar.ParseDate(dob)
	if !ok {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// RefreshAge recomputes m.Age from the date of birth when one is set.
// A member without a usable date keeps the age that was entered by hand.
func RefreshAge(m *models.Member, now time.Time) {
	if age, ok := AgeFromDate(m.DateOfBirth, now); ok {
		m.Age = &age
	}
}

// ApplyDefaults normalises a member before it is stored.
func ApplyDefaults(m *models.Member, now time.Time) {
	m.FirstName = strings.TrimSpace(m.FirstName)
	m.LastName = strings.TrimSpace(m.LastName)
	m.Nickname = strings.TrimSpace(m.Nickname)
	if m.Nickname == "" {
		m.Nickname = m.FirstName
	}
	if m.Sex == "" {
		m.Sex = models.SexMale
	}
	if m.CivilStatus == "" {
		m.CivilStatus = models.CivilStatusSingle
	}
	if m.Relatives == nil {
		m.Relatives = map[string]int64{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	RefreshAge(m, now)
}
