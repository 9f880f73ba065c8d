package database

import (
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDialectBasics(t *testing.T) {
	tests := []struct {
		name         string
		dialect      Dialect
		driver       string
		subdir       string
		lastInsertID bool
	}{
		{"SQLite", NewSQLiteDialect(), "sqlite3", "sqlite", true},
		{"PostgreSQL", NewPostgresDialect(), "postgres", "postgres", false},
		{"MySQL", NewMySQLDialect(), "mysql", "mysql", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.driver, tt.dialect.DriverName())
			assert.Equal(t, tt.subdir, tt.dialect.MigrationsSubdir())
			assert.Equal(t, tt.lastInsertID, tt.dialect.SupportsLastInsertId())
			assert.Contains(t, tt.dialect.UpsertSettingQuery(), "settings")
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM members WHERE id = ?",
			expected: "SELECT * FROM members WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM members WHERE id = ?",
			expected: "SELECT * FROM members WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO events (title, date) VALUES (?, ?)",
			expected: "INSERT INTO events (title, date) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE events SET title = ?, date = ? WHERE id = ?",
			expected: "UPDATE events SET title = ?, date = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.dialect.RewriteQuery(tt.query))
		})
	}
}

func TestMySQLDSNEnablesParseTime(t *testing.T) {
	dsn := NewMySQLDialect().DSN(DialectConfig{URL: "church:secret@tcp(localhost:3306)/church"})
	assert.Contains(t, dsn, "parseTime=true")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, NewPostgresDialect().IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.False(t, NewPostgresDialect().IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.True(t, NewMySQLDialect().IsUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, NewMySQLDialect().IsUniqueViolation(errors.New("boom")))
}

func TestSplitStatements(t *testing.T) {
	stmts := splitStatements("CREATE TABLE a (id INT);\n\nCREATE TABLE b (id INT);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE TABLE b (id INT)"}, stmts)
}

func TestResetSequenceQuery(t *testing.T) {
	assert.Contains(t, NewPostgresDialect().ResetSequenceQuery("members"), "pg_get_serial_sequence('members', 'id')")
	assert.Empty(t, NewSQLiteDialect().ResetSequenceQuery("members"))
	assert.Empty(t, NewMySQLDialect().ResetSequenceQuery("members"))
}
