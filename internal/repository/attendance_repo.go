package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// AttendanceRepository stores head counts.
type AttendanceRepository struct {
	db database.DBTX
}

func NewAttendanceRepository(db database.DBTX) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `id, event_id, event_type, event_title, date, time, location, attendees,
	total_attendees, notes, created_at, updated_at`

func scanAttendance(s rowScanner) (*models.Attendance, error) {
	var a models.Attendance
	var attendees string
	if err := s.Scan(&a.ID, &a.EventID, &a.EventType, &a.EventTitle, &a.Date, &a.Time, &a.Location, &attendees,
		&a.TotalAttendees, &a.Notes, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.Attendees = []int64{}
	decodeJSON("attendance", "attendees", a.ID, attendees, &a.Attendees)
	return &a, nil
}

func attendanceArgs(a *models.Attendance) ([]any, error) {
	attendees := a.Attendees
	if attendees == nil {
		attendees = []int64{}
	}
	attJSON, err := encodeJSON(attendees)
	if err != nil {
		return nil, err
	}
	return []any{a.EventID, a.EventType, a.EventTitle, a.Date, a.Time, a.Location, attJSON, a.TotalAttendees, a.Notes}, nil
}

func (r *AttendanceRepository) Create(ctx context.Context, a *models.Attendance) error {
	args, err := attendanceArgs(a)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO attendance (event_id, event_type, event_title, date, time, location, attendees, total_attendees, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create attendance: %w", err)
	}
	a.ID = id
	return nil
}

func (r *AttendanceRepository) Update(ctx context.Context, a *models.Attendance) error {
	args, err := attendanceArgs(a)
	if err != nil {
		return err
	}
	query := `
		UPDATE attendance
		SET event_id = ?, event_type = ?, event_title = ?, date = ?, time = ?, location = ?, attendees = ?,
			total_attendees = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, append(args, a.ID)...); err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	return nil
}

func (r *AttendanceRepository) Get(ctx context.Context, id int64) (*models.Attendance, error) {
	a, err := scanAttendance(r.db.QueryRowContext(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return a, nil
}

// List returns all records, most recent first.
func (r *AttendanceRepository) List(ctx context.Context) ([]models.Attendance, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+attendanceColumns+` FROM attendance ORDER BY date DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	out := []models.Attendance{}
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AttendanceRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}
