package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// ErrDuplicateOverride is returned when a virtual occurrence already has an override.
var ErrDuplicateOverride = errors.New("occurrence already has an override")

// EventRepository stores persisted events, including overrides of virtual occurrences.
type EventRepository struct {
	db database.DBTX
}

// NewEventRepository creates a new event repository
func NewEventRepository(db database.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, type, date, time, location, description, attendees, icon,
	override_of, is_override, is_cancelled, member_id, created_at, updated_at`

func scanEvent(s rowScanner) (*models.Event, error) {
	var e models.Event
	var overrideOf sql.NullString
	var memberID sql.NullInt64
	if err := s.Scan(&e.ID, &e.Title, &e.Type, &e.Date, &e.Time, &e.Location, &e.Description, &e.Attendees,
		&e.Icon, &overrideOf, &e.IsOverride, &e.IsCancelled, &memberID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.OverrideOf = overrideOf.String
	e.MemberID = int64Ptr(memberID)
	return &e, nil
}

func eventArgs(e *models.Event) []any {
	return []any{e.Title, e.Type, e.Date, e.Time, e.Location, e.Description, e.Attendees, e.Icon,
		nullString(e.OverrideOf), e.IsOverride, e.IsCancelled, nullInt64(e.MemberID)}
}

func (r *EventRepository) wrapWrite(action string, err error) error {
	if r.db.GetDialect().IsUniqueViolation(err) {
		return ErrDuplicateOverride
	}
	return fmt.Errorf("failed to %s event: %w", action, err)
}

// Create inserts an event and sets its ID.
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	query := `
		INSERT INTO events (title, type, date, time, location, description, attendees, icon,
			override_of, is_override, is_cancelled, member_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, eventArgs(e)...)
	if err != nil {
		return r.wrapWrite("create", err)
	}
	e.ID = id
	return nil
}

// Update replaces every field of an existing event.
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	query := `
		UPDATE events
		SET title = ?, type = ?, date = ?, time = ?, location = ?, description = ?, attendees = ?, icon = ?,
			override_of = ?, is_override = ?, is_cancelled = ?, member_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, append(eventArgs(e), e.ID)...); err != nil {
		return r.wrapWrite("update", err)
	}
	return nil
}

// Get returns the event with id, or nil when it does not exist.
func (r *EventRepository) Get(ctx context.Context, id int64) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

// FindByOverrideOf returns the override of a virtual occurrence, or nil.
func (r *EventRepository) FindByOverrideOf(ctx context.Context, virtualID string) (*models.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE override_of = ?`, virtualID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get override: %w", err)
	}
	return e, nil
}

// List returns every event ordered by date and time.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date, time, id`)
}

// ListBetween returns events dated from..to inclusive (ISO dates).
func (r *EventRepository) ListBetween(ctx context.Context, from, to string) ([]models.Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM events WHERE date >= ? AND date <= ? ORDER BY date, time, id`, from, to)
}

// ListOverrides returns every event that replaces or cancels an occurrence.
func (r *EventRepository) ListOverrides(ctx context.Context) ([]models.Event, error) {
	return r.query(ctx, `SELECT `+eventColumns+` FROM events WHERE override_of IS NOT NULL ORDER BY date, time, id`)
}

func (r *EventRepository) query(ctx context.Context, query string, args ...any) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}
	return events, nil
}

// Delete removes an event. Deleting an override restores the virtual occurrence.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}
