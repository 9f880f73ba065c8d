package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

func TestCLI(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SESSION_DURATION", "1h")
	db := filepath.Join(dir, "church.db")

	assert.Contains(t, execute(t, "migrate", "--db-path", db), "migrations up to date")

	out := execute(t, "users", "create-admin", "pastor@example.com", "--password", "correct-horse", "--name", "Pastor", "--db-path", db)
	assert.Contains(t, out, "created administrator pastor@example.com")

	out = execute(t, "users", "list", "--db-path", db)
	assert.Contains(t, out, "pastor@example.com")

	seedFile := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seedFile, []byte(`
members:
  - first_name: Ana
    last_name: Reyes
    sex: Female
`), 0o644))
	assert.Contains(t, execute(t, "seed", seedFile, "--db-path", db), "created 1 members")

	backup := filepath.Join(dir, "out", "backup.json")
	assert.Contains(t, execute(t, "backup", "export", "-o", backup, "--db-path", db), backup)
	require.FileExists(t, backup)

	out = execute(t, "backup", "import", backup, "--replace", "--db-path", db)
	assert.Contains(t, out, "members")
	assert.Contains(t, out, "users")

	assert.Contains(t, execute(t, "birthdays", "--days", "0", "--db-path", db), "no birthdays")
}
