package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// PrayerRepository stores prayer concerns.
type PrayerRepository struct {
	db database.DBTX
}

func NewPrayerRepository(db database.DBTX) *PrayerRepository {
	return &PrayerRepository{db: db}
}

const prayerColumns = `id, title, member_id, member_name, description, status, priority, date, notes,
	created_by, created_at, updated_at`

func scanPrayer(s rowScanner) (*models.PrayerConcern, error) {
	var c models.PrayerConcern
	var memberID sql.NullInt64
	if err := s.Scan(&c.ID, &c.Title, &memberID, &c.MemberName, &c.Description, &c.Status, &c.Priority, &c.Date,
		&c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.MemberID = int64Ptr(memberID)
	return &c, nil
}

func prayerArgs(c *models.PrayerConcern) []any {
	return []any{c.Title, nullInt64(c.MemberID), c.MemberName, c.Description, c.Status, c.Priority, c.Date, c.Notes, c.CreatedBy}
}

func (r *PrayerRepository) Create(ctx context.Context, c *models.PrayerConcern) error {
	query := `
		INSERT INTO prayer_concerns (title, member_id, member_name, description, status, priority, date, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, prayerArgs(c)...)
	if err != nil {
		return fmt.Errorf("failed to create prayer concern: %w", err)
	}
	c.ID = id
	return nil
}

func (r *PrayerRepository) Update(ctx context.Context, c *models.PrayerConcern) error {
	query := `
		UPDATE prayer_concerns
		SET title = ?, member_id = ?, member_name = ?, description = ?, status = ?, priority = ?, date = ?,
			notes = ?, created_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, append(prayerArgs(c), c.ID)...); err != nil {
		return fmt.Errorf("failed to update prayer concern: %w", err)
	}
	return nil
}

func (r *PrayerRepository) Get(ctx context.Context, id int64) (*models.PrayerConcern, error) {
	c, err := scanPrayer(r.db.QueryRowContext(ctx, `SELECT `+prayerColumns+` FROM prayer_concerns WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prayer concern: %w", err)
	}
	return c, nil
}

// List returns all concerns, newest first.
func (r *PrayerRepository) List(ctx context.Context) ([]models.PrayerConcern, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+prayerColumns+` FROM prayer_concerns ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query prayer concerns: %w", err)
	}
	defer rows.Close()

	out := []models.PrayerConcern{}
	for rows.Next() {
		c, err := scanPrayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prayer concern: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PrayerRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM prayer_concerns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete prayer concern: %w", err)
	}
	return nil
}
