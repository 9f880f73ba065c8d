// Package app wires repositories, services, live feeds and HTTP handlers
// into one object graph shared by the server, the CLI and the tests.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"churchadmin/internal/calendar"
	"churchadmin/internal/config"
	"churchadmin/internal/database"
	"churchadmin/internal/enhance"
	"churchadmin/internal/family"
	"churchadmin/internal/handlers"
	"churchadmin/internal/health"
	"churchadmin/internal/ical"
	"churchadmin/internal/live"
	"churchadmin/internal/models"
	"churchadmin/internal/notify"
	"churchadmin/internal/repository"
	"churchadmin/internal/roster"
	"churchadmin/internal/scheduler"
	"churchadmin/internal/security"
	"churchadmin/internal/seed"
	"churchadmin/internal/service"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	// seedAppliedKey records which seed file the server has applied.
	seedAppliedKey = "seed_applied"
)

// Options override the parts of the graph that tests replace.
type Options struct {
	Version string
	Logger  *slog.Logger
	// Now pins the clock.
	Now service.Clock
	// Model replaces the Gemini client built from the config.
	Model enhance.Enhancer
	// Alerter replaces the email service for prayer alerts.
	Alerter service.PrayerAlerter
	// Seed supplies holidays; when nil SeedPath from the config is read.
	Seed *seed.File
}

// App is the assembled application.
type App struct {
	Config *config.Config
	DB     *database.DB
	Logger *slog.Logger

	Settings   *repository.SettingsRepository
	Members    *service.MemberService
	Events     *service.EventService
	Calendar   *service.CalendarService
	Families   *service.FamilyService
	Minutes    *service.MinutesService
	Attendance *service.AttendanceService
	Prayer     *service.PrayerService
	Auth       *service.AuthService
	Backup     *service.BackupService
	Email      *service.EmailService

	// Seed is the loaded seed file, if any.
	Seed *seed.File

	Hub     *live.Hub
	Notes   *notify.Queue
	Jobs    *scheduler.Jobs
	Limiter *security.RateLimiter
	Handler http.Handler
}

// New builds the application on an already migrated database.
func New(ctx context.Context, cfg *config.Config, db *database.DB, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, DB: db, Logger: logger, Hub: live.NewHub()}

	seedFile := opts.Seed
	if seedFile == nil && cfg.SeedPath != "" {
		f, err := seed.Load(cfg.SeedPath)
		if err != nil {
			return nil, err
		}
		seedFile = f
	}
	a.Seed = seedFile
	var holidays map[string]string
	if seedFile != nil {
		holidays = seedFile.HolidayMap()
	}

	email, err := service.NewEmailService(ctx, service.EmailConfig{
		AWSRegion:  cfg.AWSRegion,
		FromEmail:  cfg.SESFromEmail,
		FromName:   cfg.SESFromName,
		AppBaseURL: cfg.AppBaseURL,
		ChurchName: cfg.ChurchName,
		Recipients: cfg.ReminderRecipients,
	}, logger)
	if err != nil {
		return nil, err
	}
	a.Email = email

	model := opts.Model
	if model == nil && cfg.GeminiAPIKey != "" {
		g, err := enhance.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		model = g
	}
	if model == nil {
		logger.Info("AI enhancement disabled: GEMINI_API_KEY not set")
	}

	var alerter service.PrayerAlerter = email
	if opts.Alerter != nil {
		alerter = opts.Alerter
	}

	clock := opts.Now
	if clock == nil {
		loc := cfg.Location()
		clock = func() time.Time { return time.Now().In(loc) }
	}
	settings := calendar.Settings{ServiceLocation: cfg.ServiceLocation, PrayerLocation: cfg.PrayerLocation}

	a.Settings = repository.NewSettingsRepository(db)
	a.Members = service.NewMemberService(repository.NewMemberRepository(db), a.Hub, clock)
	a.Events = service.NewEventService(repository.NewEventRepository(db), repository.NewPresetRepository(db), a.Hub)
	a.Calendar = service.NewCalendarService(a.Members, a.Events, settings, holidays, clock)
	a.Families = service.NewFamilyService(a.Members)
	a.Minutes = service.NewMinutesService(repository.NewMinutesRepository(db), model,
		enhance.NewFallback(model, enhance.Heuristic{}, logger), a.Hub)
	a.Attendance = service.NewAttendanceService(repository.NewAttendanceRepository(db), a.Minutes, a.Calendar, a.Hub)
	a.Prayer = service.NewPrayerService(repository.NewPrayerRepository(db), a.Members, alerter, a.Hub, clock, logger)
	a.Auth = service.NewAuthService(repository.NewUserRepository(db),
		security.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL), cfg.SessionDuration, clock)
	a.Backup = service.NewBackupService(db, a.Hub, logger)
	a.Notes = notify.New(0, a.Hub)

	a.registerFeeds()

	a.Jobs = &scheduler.Jobs{
		Birthdays:    a.Calendar,
		Sender:       email,
		Sessions:     a.Auth,
		Marker:       a.Settings,
		UpcomingDays: cfg.UpcomingDays,
		Feeds:        a.Hub,
		FeedNames:    []string{service.FeedCalendar, service.FeedFamilies, service.FeedAttendance},
		Logger:       logger,
	}

	a.Limiter = security.NewRateLimiter(10, time.Minute)
	a.Handler = a.router(opts.Version, model != nil)
	return a, nil
}

func (a *App) registerFeeds() {
	logger := a.Logger
	members := live.NewCollection(service.FeedMembers, a.Members.All, logger)
	attendance := live.NewCollection(service.FeedAttendance, a.Attendance.History, logger)
	a.Hub.Register(members)
	a.Hub.Register(attendance)
	a.Hub.Register(live.NewCollection(service.FeedEvents, a.Events.List, logger))
	a.Hub.Register(live.NewCollection(service.FeedPresets, a.Events.Presets, logger))
	a.Hub.Register(live.NewCollection(service.FeedCalendar, a.Calendar.Events, logger))
	a.Hub.Register(live.NewCollection(service.FeedFamilies, func(ctx context.Context) ([]family.Cluster, error) {
		return a.Families.Groups(ctx, roster.Filter{}, family.DefaultOptions)
	}, logger))
	a.Hub.Register(live.NewCollection(service.FeedMinutes, a.Minutes.List, logger))
	a.Hub.Register(live.NewCollection(service.FeedPrayer, a.Prayer.List, logger))
	a.Hub.Register(live.NewCollection(notify.Feed, func(context.Context) ([]notify.Notification, error) {
		return a.Notes.List(), nil
	}, logger))

	// Generated events expect the whole directory to attend.
	live.Link(members, attendance)
}

func (a *App) router(version string, aiEnabled bool) http.Handler {
	cfg := a.Config
	providers := map[string]handlers.OAuthProvider{
		"google": {
			Name:  "google",
			Label: "Google",
			Config: &oauth2.Config{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				Endpoint:     google.Endpoint,
				Scopes:       []string{"openid", "email", "profile"},
			},
			UserInfoURL: googleUserInfoURL,
		},
	}
	csrf := security.NewCSRFGenerator(cfg.CSRFSecret)
	middleware := handlers.NewMiddleware(a.Auth, csrf, a.Limiter, a.Logger)

	a.Logger.Info("handlers configured", "ai", aiEnabled, "email", a.Email.IsEnabled(),
		"google", cfg.GoogleClientID != "")

	return handlers.NewRouter(handlers.Handlers{
		Auth:          handlers.NewAuthHandler(a.Auth, csrf, providers, cfg.OAuthRedirectBaseURL, cfg.AppBaseURL),
		Members:       handlers.NewMemberHandler(a.Members, a.Families, a.Notes),
		Events:        handlers.NewEventHandler(a.Events, a.Notes),
		Calendar:      handlers.NewCalendarHandler(a.Calendar, a.Events, ical.Feed{Name: cfg.ChurchName, Location: cfg.Location()}, a.Notes),
		Minutes:       handlers.NewMinutesHandler(a.Minutes, a.Notes),
		Attendance:    handlers.NewAttendanceHandler(a.Attendance, a.Notes),
		Prayer:        handlers.NewPrayerHandler(a.Prayer, a.Notes),
		Admin:         handlers.NewAdminHandler(a.Auth, a.Backup, a.Notes, version, a.Logger),
		Notifications: handlers.NewNotificationHandler(a.Notes),
		Live:          handlers.NewLiveHandler(a.Hub, cfg.CORSOrigins, a.Logger),
		Health:        handlers.NewHealthHandler(health.NewChecker(a.DB), version),
	}, middleware, cfg.CORSOrigins, a.Logger)
}

// ApplySeed loads members, presets and events from f, or from the
// configured seed file when f is nil. Members are only added to an empty
// directory.
func (a *App) ApplySeed(ctx context.Context, f *seed.File) (seed.Result, error) {
	if f == nil {
		f = a.Seed
	}
	if f == nil {
		return seed.Result{}, nil
	}
	return seed.Apply(ctx, f, a.Members, a.Events, a.Logger)
}

// SeedOnce applies the configured seed file the first time the server
// starts with it. Presets and events are not deduplicated, so the path is
// remembered in settings once the seed succeeds.
func (a *App) SeedOnce(ctx context.Context) (seed.Result, error) {
	if a.Seed == nil {
		return seed.Result{}, nil
	}
	applied, ok, err := a.Settings.Get(ctx, seedAppliedKey)
	if err != nil {
		return seed.Result{}, err
	}
	if ok && applied == a.Config.SeedPath {
		return seed.Result{}, nil
	}
	res, err := a.ApplySeed(ctx, a.Seed)
	if err != nil {
		return res, err
	}
	return res, a.Settings.Set(ctx, seedAppliedKey, a.Config.SeedPath)
}

// SendDigest sends the birthday digest immediately, bypassing the
// once-a-day guard. The digest covers the current day; date only labels it
// and defaults to today.
func (a *App) SendDigest(ctx context.Context, date string) error {
	if date == "" {
		date = calendar.FormatDate(calendar.Today(a.Calendar.Now()))
	}
	if _, ok := calendar.ParseDate(date); !ok {
		return fmt.Errorf("invalid date %q", date)
	}
	return a.Jobs.SendDigest(ctx, date)
}

// Run starts the live feeds, the scheduler and the rate limiter cleanup
// and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	sched, err := scheduler.New(scheduler.Config{
		BirthdayDigest: a.Config.BirthdayDigestCron,
		SessionCleanup: a.Config.SessionCleanupCron,
		FeedRefresh:    a.Config.FeedRefreshCron,
		Location:       a.Config.Location(),
	}, a.Jobs)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.Hub.Run(ctx) })
	g.Go(func() error { return sched.Run(ctx) })
	g.Go(func() error {
		a.Limiter.StartCleanup(ctx, 5*time.Minute)
		return nil
	})
	return g.Wait()
}

// Close stops pending notification timers.
func (a *App) Close() {
	a.Notes.Close()
}

// UserByEmail finds an account by its (case-insensitive) email.
func (a *App) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := a.Auth.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, service.ErrUserNotFound
}
