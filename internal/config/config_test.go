package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, "0 6 * * *", cfg.BirthdayDigestCron)
	assert.Equal(t, "5 0 * * *", cfg.FeedRefreshCron)
	assert.Equal(t, 30, cfg.UpcomingDays)
	assert.Empty(t, cfg.ReminderRecipients)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/church")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("REMINDER_RECIPIENTS", "pastor@example.com, secretary@example.com ,")
	t.Setenv("CORS_ORIGINS", "https://church.example.com")

	cfg := FromViper(newViper())

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, "postgres://localhost/church", cfg.DatabaseURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, []string{"pastor@example.com", "secretary@example.com"}, cfg.ReminderRecipients)
	assert.Equal(t, []string{"https://church.example.com"}, cfg.CORSOrigins)
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "Asia/Manila"}
	loc := cfg.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Manila", loc.String())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}
