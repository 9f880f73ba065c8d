// Package validation checks user input before it reaches the repositories.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	timeRegex  = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects every problem found in one input.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, err := range e {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "; ")
}

// add records err when it is a ValidationError and returns any other error unchanged.
func (e *Errors) add(err error) {
	if err == nil {
		return
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		*e = append(*e, ve)
		return
	}
	*e = append(*e, ValidationError{Field: "input", Message: err.Error()})
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateAccount checks a new admin account and reports every bad field.
func ValidateAccount(email, password, name string) error {
	var errs Errors
	errs.add(ValidateEmail(email))
	errs.add(ValidatePassword(password))
	errs.add(ValidateName(name))
	return errs.orNil()
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateDate accepts an ISO date. Blank dates pass unless required.
func ValidateDate(field, value string, isRequired bool) error {
	if strings.TrimSpace(value) == "" {
		if isRequired {
			return ValidationError{Field: field, Message: field + " is required"}
		}
		return nil
	}
	if _, ok := calendar.ParseDate(value); !ok {
		return ValidationError{Field: field, Message: "must be a valid date (YYYY-MM-DD)"}
	}
	return nil
}

// ValidateTime accepts a 24-hour HH:MM time. Blank passes.
func ValidateTime(field, value string) error {
	if value == "" || timeRegex.MatchString(value) {
		return nil
	}
	return ValidationError{Field: field, Message: "must be a time in HH:MM format"}
}

func oneOf(field, value string, allowed ...string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	return ValidationError{Field: field, Message: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", "))}
}

// EventTypes lists the accepted event types.
var EventTypes = []string{
	models.EventTypeWorship,
	models.EventTypePrayer,
	models.EventTypeCelebration,
	models.EventTypeMeeting,
	models.EventTypeFellowship,
	models.EventTypeOutreach,
}

// ValidateMember checks a member before it is stored.
func ValidateMember(m *models.Member) error {
	var errs Errors
	errs.add(required("firstName", m.FirstName))
	errs.add(required("lastName", m.LastName))
	errs.add(oneOf("sex", m.Sex, models.SexMale, models.SexFemale))
	errs.add(ValidateDate("dateOfBirth", m.DateOfBirth, false))
	if m.Age != nil && (*m.Age < 0 || *m.Age > 150) {
		errs.add(ValidationError{Field: "age", Message: "must be between 0 and 150"})
	}
	for relation, id := range m.Relatives {
		if strings.TrimSpace(relation) == "" {
			errs.add(ValidationError{Field: "relatives", Message: "relation must not be blank"})
		}
		if m.ID != 0 && id == m.ID {
			errs.add(ValidationError{Field: "relatives", Message: "a member cannot be their own relative"})
		}
	}
	return errs.orNil()
}

// ValidateEvent checks an event, including override events.
func ValidateEvent(e *models.Event) error {
	var errs Errors
	errs.add(required("title", e.Title))
	errs.add(ValidateDate("date", e.Date, true))
	errs.add(ValidateTime("time", e.Time))
	errs.add(oneOf("type", e.Type, EventTypes...))
	if e.Attendees < 0 {
		errs.add(ValidationError{Field: "attendees", Message: "must not be negative"})
	}
	if e.IsCancelled && e.OverrideOf == "" {
		errs.add(ValidationError{Field: "isCancelled", Message: "only an override can cancel an occurrence"})
	}
	return errs.orNil()
}

// ValidatePreset checks an event preset.
func ValidatePreset(p *models.EventPreset) error {
	var errs Errors
	errs.add(required("name", p.Name))
	errs.add(required("title", p.Title))
	errs.add(ValidateTime("time", p.Time))
	errs.add(oneOf("type", p.Type, EventTypes...))
	return errs.orNil()
}

// ValidateMinute checks meeting minutes.
func ValidateMinute(m *models.Minute) error {
	var errs Errors
	errs.add(required("title", m.Title))
	errs.add(ValidateDate("date", m.Date, true))
	errs.add(ValidateTime("startTime", m.StartTime))
	errs.add(ValidateTime("endTime", m.EndTime))
	if m.StartTime != "" && m.EndTime != "" && timeRegex.MatchString(m.StartTime) && timeRegex.MatchString(m.EndTime) && m.EndTime < m.StartTime {
		errs.add(ValidationError{Field: "endTime", Message: "must not be before startTime"})
	}
	return errs.orNil()
}

// ValidateAttendance checks an attendance record.
func ValidateAttendance(a *models.Attendance) error {
	var errs Errors
	errs.add(required("eventTitle", a.EventTitle))
	errs.add(ValidateDate("date", a.Date, true))
	errs.add(ValidateTime("time", a.Time))
	if a.TotalAttendees < 0 {
		errs.add(ValidationError{Field: "totalAttendees", Message: "must not be negative"})
	}
	return errs.orNil()
}

// ValidatePrayerConcern checks a prayer concern.
func ValidatePrayerConcern(c *models.PrayerConcern) error {
	var errs Errors
	errs.add(required("title", c.Title))
	errs.add(ValidateDate("date", c.Date, false))
	errs.add(oneOf("status", c.Status, models.PrayerStatusActive, models.PrayerStatusAnswered, models.PrayerStatusOngoing))
	errs.add(oneOf("priority", c.Priority, models.PriorityLow, models.PriorityNormal, models.PriorityHigh, models.PriorityUrgent))
	return errs.orNil()
}
