package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"churchadmin/internal/database"
)

// SettingsRepository is a small key/value store used for runtime state such
// as the last birthday digest date.
type SettingsRepository struct {
	db database.DBTX
}

func NewSettingsRepository(db database.DBTX) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the value for name and whether it exists.
func (r *SettingsRepository) Get(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", name, err)
	}
	return value, true, nil
}

// Set updates or inserts a setting
func (r *SettingsRepository) Set(ctx context.Context, name, value string) error {
	if _, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertSettingQuery(), name, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", name, err)
	}
	return nil
}

// GetBool reads a boolean setting, defaulting to def when unset.
func (r *SettingsRepository) GetBool(ctx context.Context, name string, def bool) bool {
	value, ok, err := r.Get(ctx, name)
	if err != nil || !ok {
		return def
	}
	return value == "true"
}

// SetBool stores a boolean setting.
func (r *SettingsRepository) SetBool(ctx context.Context, name string, v bool) error {
	value := "false"
	if v {
		value = "true"
	}
	return r.Set(ctx, name, value)
}

// MarkOnce records that the job name ran for key (typically a date) and
// reports whether this is the first time.
func (r *SettingsRepository) MarkOnce(ctx context.Context, name, key string) (bool, error) {
	last, _, err := r.Get(ctx, name)
	if err != nil {
		return false, err
	}
	if last == key {
		return false, nil
	}
	return true, r.Set(ctx, name, key)
}

// Touch stores the current time under name in RFC 3339.
func (r *SettingsRepository) Touch(ctx context.Context, name string, now time.Time) error {
	return r.Set(ctx, name, now.UTC().Format(time.RFC3339))
}
