package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"churchadmin/internal/database/dbtest"
	"churchadmin/internal/logging"
	"churchadmin/internal/models"
	"churchadmin/internal/repository"
)

type fakeBirthdays struct {
	now      time.Time
	today    []models.CalendarEvent
	upcoming []models.CalendarEvent
}

func (f *fakeBirthdays) Now() time.Time { return f.now }

func (f *fakeBirthdays) TodaysBirthdays(context.Context) ([]models.CalendarEvent, error) {
	return f.today, nil
}

func (f *fakeBirthdays) UpcomingBirthdays(context.Context, int) ([]models.CalendarEvent, error) {
	return f.upcoming, nil
}

type digest struct {
	date            string
	today, upcoming int
}

type fakeSender struct {
	sent []digest
	err  error
}

func (f *fakeSender) SendBirthdayDigest(_ context.Context, date string, today, upcoming []models.CalendarEvent) error {
	f.sent = append(f.sent, digest{date, len(today), len(upcoming)})
	return f.err
}

type fakeCleaner struct{ calls int }

func (f *fakeCleaner) CleanupExpiredSessions(context.Context) (int64, error) {
	f.calls++
	return 2, nil
}

func TestBirthdayDigestSendsOncePerDay(t *testing.T) {
	ctx := context.Background()
	ana := models.CalendarEvent{ID: "birthday-1-2024", Date: "2024-06-01"}
	ben := models.CalendarEvent{ID: "birthday-2-2024", Date: "2024-06-09"}
	birthdays := &fakeBirthdays{
		now:      time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC),
		today:    []models.CalendarEvent{ana},
		upcoming: []models.CalendarEvent{ana, ben},
	}
	sender := &fakeSender{}
	jobs := &Jobs{
		Birthdays:    birthdays,
		Sender:       sender,
		Marker:       repository.NewSettingsRepository(dbtest.Open(t)),
		UpcomingDays: 30,
		Logger:       logging.Discard(),
	}

	require.NoError(t, jobs.BirthdayDigest(ctx))
	require.NoError(t, jobs.BirthdayDigest(ctx))
	assert.Equal(t, []digest{{"2024-06-01", 1, 1}}, sender.sent, "today's birthdays are not repeated as upcoming")

	birthdays.now = birthdays.now.AddDate(0, 0, 1)
	require.NoError(t, jobs.BirthdayDigest(ctx))
	assert.Len(t, sender.sent, 2)
}

func TestBirthdayDigestReportsSendErrors(t *testing.T) {
	jobs := &Jobs{
		Birthdays: &fakeBirthdays{now: time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)},
		Sender:    &fakeSender{err: errors.New("ses down")},
		Marker:    repository.NewSettingsRepository(dbtest.Open(t)),
		Logger:    logging.Discard(),
	}
	assert.Error(t, jobs.SendDigest(context.Background(), "2024-06-01"))
}

func TestCleanupSessionsRecordsRun(t *testing.T) {
	ctx := context.Background()
	settings := repository.NewSettingsRepository(dbtest.Open(t))
	cleaner := &fakeCleaner{}
	jobs := &Jobs{Sessions: cleaner, Marker: settings, Logger: logging.Discard()}

	require.NoError(t, jobs.CleanupSessions(ctx))
	assert.Equal(t, 1, cleaner.calls)
	_, ok, err := settings.Get(ctx, SessionCleanupKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewValidatesSchedules(t *testing.T) {
	jobs := &Jobs{Logger: logging.Discard()}

	s, err := New(Config{BirthdayDigest: "0 6 * * *"}, jobs)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries(), "empty schedule disables the job")

	_, err = New(Config{SessionCleanup: "every now and then"}, jobs)
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := New(Config{SessionCleanup: "@hourly"}, &Jobs{Logger: logging.Discard()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

type fakeRefresher struct{ refreshed [][]string }

func (f *fakeRefresher) Refresh(names ...string) {
	f.refreshed = append(f.refreshed, names)
}

func TestRefreshFeeds(t *testing.T) {
	ctx := context.Background()
	hub := &fakeRefresher{}
	jobs := &Jobs{Feeds: hub, FeedNames: []string{"calendar", "families"}, Logger: logging.Discard()}

	require.NoError(t, jobs.RefreshFeeds(ctx))
	assert.Equal(t, [][]string{{"calendar", "families"}}, hub.refreshed)

	idle := &Jobs{Logger: logging.Discard()}
	assert.NoError(t, idle.RefreshFeeds(ctx), "no hub configured")

	s, err := New(Config{FeedRefresh: "5 0 * * *"}, jobs)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Entries())
}
