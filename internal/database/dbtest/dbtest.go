// Package dbtest opens throwaway migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"churchadmin/internal/database"
)

// Open returns a fresh, migrated database that is closed when t ends.
func Open(t testing.TB) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "church.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}
