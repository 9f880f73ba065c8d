// Package scheduler runs the periodic jobs: the daily birthday digest,
// expired session cleanup and the daily refresh of date-dependent feeds.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"churchadmin/internal/calendar"
	"churchadmin/internal/metrics"
	"churchadmin/internal/models"
)

// Settings keys used to remember job runs.
const (
	BirthdayDigestKey = "birthday_digest_last_date"
	SessionCleanupKey = "session_cleanup_last_run"
)

// Birthdays supplies the members celebrating today and soon.
type Birthdays interface {
	Now() time.Time
	TodaysBirthdays(ctx context.Context) ([]models.CalendarEvent, error)
	UpcomingBirthdays(ctx context.Context, days int) ([]models.CalendarEvent, error)
}

// DigestSender delivers the birthday digest.
type DigestSender interface {
	SendBirthdayDigest(ctx context.Context, date string, today, upcoming []models.CalendarEvent) error
}

// SessionCleaner removes expired sessions.
type SessionCleaner interface {
	CleanupExpiredSessions(ctx context.Context) (int64, error)
}

// Refresher reloads live feeds by name.
type Refresher interface {
	Refresh(names ...string)
}

// Marker persists job bookkeeping.
type Marker interface {
	MarkOnce(ctx context.Context, name, key string) (bool, error)
	Touch(ctx context.Context, name string, now time.Time) error
}

// Jobs holds the job implementations. They are usable without a running
// scheduler, which is how the CLI triggers a digest by hand.
type Jobs struct {
	Birthdays    Birthdays
	Sender       DigestSender
	Sessions     SessionCleaner
	Marker       Marker
	UpcomingDays int

	// Feeds are reloaded daily because their content depends on the date.
	Feeds     Refresher
	FeedNames []string
	Logger    *slog.Logger
}

func (j *Jobs) logger() *slog.Logger {
	if j.Logger == nil {
		return slog.Default()
	}
	return j.Logger
}

// BirthdayDigest sends the digest for today at most once per date. The date
// is claimed before sending so two instances never both send; a failed send
// is therefore not retried until the next day.
func (j *Jobs) BirthdayDigest(ctx context.Context) error {
	date := calendar.FormatDate(calendar.Today(j.Birthdays.Now()))
	first, err := j.Marker.MarkOnce(ctx, BirthdayDigestKey, date)
	if err != nil {
		return fmt.Errorf("failed to claim birthday digest: %w", err)
	}
	if !first {
		j.logger().Debug("birthday digest already sent", "date", date)
		return nil
	}
	return j.SendDigest(ctx, date)
}

// SendDigest sends the digest unconditionally.
func (j *Jobs) SendDigest(ctx context.Context, date string) error {
	today, err := j.Birthdays.TodaysBirthdays(ctx)
	if err != nil {
		return err
	}
	upcoming, err := j.Birthdays.UpcomingBirthdays(ctx, j.UpcomingDays)
	if err != nil {
		return err
	}
	// Upcoming includes today; the digest lists those separately.
	soon := upcoming[:0:0]
	for _, ev := range upcoming {
		if ev.Date != date {
			soon = append(soon, ev)
		}
	}
	if err := j.Sender.SendBirthdayDigest(ctx, date, today, soon); err != nil {
		return err
	}
	j.logger().Info("birthday digest processed", "date", date, "today", len(today), "upcoming", len(soon))
	return nil
}

// CleanupSessions deletes expired sessions.
func (j *Jobs) CleanupSessions(ctx context.Context) error {
	n, err := j.Sessions.CleanupExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		j.logger().Info("cleaned up expired sessions", "count", n)
	}
	return j.Marker.Touch(ctx, SessionCleanupKey, time.Now())
}

// RefreshFeeds reloads the date-dependent feeds, so a new year or a
// birthday shows up without waiting for a data change.
func (j *Jobs) RefreshFeeds(context.Context) error {
	if j.Feeds == nil || len(j.FeedNames) == 0 {
		return nil
	}
	j.Feeds.Refresh(j.FeedNames...)
	j.logger().Debug("date-dependent feeds refreshed", "feeds", j.FeedNames)
	return nil
}

// Config holds the cron expressions. An empty expression disables the job.
type Config struct {
	BirthdayDigest string
	SessionCleanup string
	FeedRefresh    string
	Location       *time.Location
}

// Scheduler runs Jobs on cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	jobs   *Jobs
	logger *slog.Logger
}

// New registers the configured jobs.
func New(cfg Config, jobs *Jobs) (*Scheduler, error) {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := jobs.logger().With("component", "scheduler")
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
		),
		jobs:   jobs,
		logger: logger,
	}
	if err := s.add("birthday_digest", cfg.BirthdayDigest, jobs.BirthdayDigest); err != nil {
		return nil, err
	}
	if err := s.add("session_cleanup", cfg.SessionCleanup, jobs.CleanupSessions); err != nil {
		return nil, err
	}
	if err := s.add("refresh_feeds", cfg.FeedRefresh, jobs.RefreshFeeds); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, job func(context.Context) error) error {
	if spec == "" {
		s.logger.Info("job disabled", "job", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		err := job(ctx)
		metrics.JobRuns.WithLabelValues(name, metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("job failed", "job", name, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for %s: %w", spec, name, err)
	}
	s.logger.Info("job scheduled", "job", name, "schedule", spec)
	return nil
}

// Entries reports how many jobs are registered.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
	return nil
}

// cronLogger adapts slog to cron's logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
