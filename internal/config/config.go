package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	SessionDuration time.Duration
	LogLevel        string
	CORSOrigins     []string

	CSRFSecret string
	JWTSecret  string
	TokenTTL   time.Duration

	GoogleClientID       string
	GoogleClientSecret   string
	OAuthRedirectBaseURL string

	AWSRegion          string
	SESFromEmail       string
	SESFromName        string
	AppBaseURL         string
	ReminderRecipients []string

	GeminiAPIKey string
	GeminiModel  string

	Timezone        string
	ChurchName      string
	ServiceLocation string
	PrayerLocation  string

	BirthdayDigestCron string
	SessionCleanupCron string
	FeedRefreshCron    string
	UpcomingDays       int

	SeedPath string
}

// Load reads an optional .env file, then resolves configuration from environment
// variables layered over defaults.
func Load() *Config {
	_ = godotenv.Load()
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_TYPE", "sqlite")
	v.SetDefault("DB_PATH", "./churchadmin.db")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_DURATION", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("CSRF_SECRET", "change-me-csrf")
	v.SetDefault("JWT_SECRET", "change-me-jwt")
	v.SetDefault("TOKEN_TTL", "12h")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("SES_FROM_NAME", "Church Admin")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("TIMEZONE", "Asia/Manila")
	v.SetDefault("CHURCH_NAME", "UEC Canubing II")
	v.SetDefault("SERVICE_LOCATION", "UEC Canubing II")
	v.SetDefault("PRAYER_LOCATION", "Online (Zoom/Google Meet)")
	v.SetDefault("BIRTHDAY_DIGEST_CRON", "0 6 * * *")
	v.SetDefault("SESSION_CLEANUP_CRON", "@hourly")
	v.SetDefault("FEED_REFRESH_CRON", "5 0 * * *")
	v.SetDefault("UPCOMING_DAYS", 30)
	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:      v.GetString("PORT"),
		DatabaseType:    v.GetString("DB_TYPE"),
		DatabasePath:    v.GetString("DB_PATH"),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		SessionDuration: v.GetDuration("SESSION_DURATION"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),

		CSRFSecret: v.GetString("CSRF_SECRET"),
		JWTSecret:  v.GetString("JWT_SECRET"),
		TokenTTL:   v.GetDuration("TOKEN_TTL"),

		GoogleClientID:       v.GetString("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   v.GetString("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectBaseURL: v.GetString("OAUTH_REDIRECT_BASE_URL"),

		AWSRegion:          v.GetString("AWS_REGION"),
		SESFromEmail:       v.GetString("SES_FROM_EMAIL"),
		SESFromName:        v.GetString("SES_FROM_NAME"),
		AppBaseURL:         v.GetString("APP_BASE_URL"),
		ReminderRecipients: splitList(v.GetString("REMINDER_RECIPIENTS")),

		GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
		GeminiModel:  v.GetString("GEMINI_MODEL"),

		Timezone:        v.GetString("TIMEZONE"),
		ChurchName:      v.GetString("CHURCH_NAME"),
		ServiceLocation: v.GetString("SERVICE_LOCATION"),
		PrayerLocation:  v.GetString("PRAYER_LOCATION"),

		BirthdayDigestCron: v.GetString("BIRTHDAY_DIGEST_CRON"),
		SessionCleanupCron: v.GetString("SESSION_CLEANUP_CRON"),
		FeedRefreshCron:    v.GetString("FEED_REFRESH_CRON"),
		UpcomingDays:       v.GetInt("UPCOMING_DAYS"),

		SeedPath: v.GetString("SEED_PATH"),
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
