package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// MinutesRepository stores meeting minutes. Attendees and the structured
// body are kept as JSON columns.
type MinutesRepository struct {
	db database.DBTX
}

func NewMinutesRepository(db database.DBTX) *MinutesRepository {
	return &MinutesRepository{db: db}
}

const minuteColumns = `id, title, date, start_time, end_time, location, attendees, content, structure, created_by, created_at, updated_at`

func scanMinute(s rowScanner) (*models.Minute, error) {
	var m models.Minute
	var attendees, structure string
	if err := s.Scan(&m.ID, &m.Title, &m.Date, &m.StartTime, &m.EndTime, &m.Location, &attendees, &m.Content,
		&structure, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Attendees = []int64{}
	decodeJSON("minutes", "attendees", m.ID, attendees, &m.Attendees)
	decodeJSON("minutes", "structure", m.ID, structure, &m.Structure)
	return &m, nil
}

func minuteArgs(m *models.Minute) ([]any, error) {
	attendees := m.Attendees
	if attendees == nil {
		attendees = []int64{}
	}
	attJSON, err := encodeJSON(attendees)
	if err != nil {
		return nil, err
	}
	structJSON, err := encodeJSON(m.Structure)
	if err != nil {
		return nil, err
	}
	return []any{m.Title, m.Date, m.StartTime, m.EndTime, m.Location, attJSON, m.Content, structJSON, m.CreatedBy}, nil
}

func (r *MinutesRepository) Create(ctx context.Context, m *models.Minute) error {
	args, err := minuteArgs(m)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO minutes (title, date, start_time, end_time, location, attendees, content, structure, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create minutes: %w", err)
	}
	m.ID = id
	return nil
}

func (r *MinutesRepository) Update(ctx context.Context, m *models.Minute) error {
	args, err := minuteArgs(m)
	if err != nil {
		return err
	}
	query := `
		UPDATE minutes
		SET title = ?, date = ?, start_time = ?, end_time = ?, location = ?, attendees = ?, content = ?,
			structure = ?, created_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, append(args, m.ID)...); err != nil {
		return fmt.Errorf("failed to update minutes: %w", err)
	}
	return nil
}

func (r *MinutesRepository) Get(ctx context.Context, id int64) (*models.Minute, error) {
	m, err := scanMinute(r.db.QueryRowContext(ctx, `SELECT `+minuteColumns+` FROM minutes WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get minutes: %w", err)
	}
	return m, nil
}

// List returns all minutes, newest meeting first.
func (r *MinutesRepository) List(ctx context.Context) ([]models.Minute, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+minuteColumns+` FROM minutes ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query minutes: %w", err)
	}
	defer rows.Close()

	out := []models.Minute{}
	for rows.Next() {
		m, err := scanMinute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan minutes: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MinutesRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM minutes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete minutes: %w", err)
	}
	return nil
}
