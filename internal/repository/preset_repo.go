package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"churchadmin/internal/database"
	"churchadmin/internal/models"
)

// PresetRepository stores event templates.
type PresetRepository struct {
	db database.DBTX
}

func NewPresetRepository(db database.DBTX) *PresetRepository {
	return &PresetRepository{db: db}
}

const presetColumns = `id, name, title, type, time, location, description, icon, created_at`

func scanPreset(s rowScanner) (*models.EventPreset, error) {
	var p models.EventPreset
	err := s.Scan(&p.ID, &p.Name, &p.Title, &p.Type, &p.Time, &p.Location, &p.Description, &p.Icon, &p.CreatedAt)
	return &p, err
}

func (r *PresetRepository) Create(ctx context.Context, p *models.EventPreset) error {
	query := `
		INSERT INTO event_presets (name, title, type, time, location, description, icon)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, p.Name, p.Title, p.Type, p.Time, p.Location, p.Description, p.Icon)
	if err != nil {
		return fmt.Errorf("failed to create preset: %w", err)
	}
	p.ID = id
	return nil
}

func (r *PresetRepository) Update(ctx context.Context, p *models.EventPreset) error {
	query := `
		UPDATE event_presets
		SET name = ?, title = ?, type = ?, time = ?, location = ?, description = ?, icon = ?
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, p.Name, p.Title, p.Type, p.Time, p.Location, p.Description, p.Icon, p.ID); err != nil {
		return fmt.Errorf("failed to update preset: %w", err)
	}
	return nil
}

func (r *PresetRepository) Get(ctx context.Context, id int64) (*models.EventPreset, error) {
	p, err := scanPreset(r.db.QueryRowContext(ctx, `SELECT `+presetColumns+` FROM event_presets WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}
	return p, nil
}

func (r *PresetRepository) List(ctx context.Context) ([]models.EventPreset, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+presetColumns+` FROM event_presets ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query presets: %w", err)
	}
	defer rows.Close()

	presets := []models.EventPreset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preset: %w", err)
		}
		presets = append(presets, *p)
	}
	return presets, rows.Err()
}

func (r *PresetRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM event_presets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	return nil
}
