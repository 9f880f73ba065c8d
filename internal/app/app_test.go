package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"churchadmin/internal/config"
	"churchadmin/internal/database/dbtest"
	"churchadmin/internal/logging"
	"churchadmin/internal/seed"
	"churchadmin/internal/service"
)

const seedYAML = `
members:
  - key: jose
    first_name: Jose
    last_name: Cruz
    sex: Male
    relatives: {spouse: maria}
  - key: maria
    first_name: Maria
    last_name: Cruz
    sex: Female
presets:
  - name: youth
    title: Youth Fellowship
    type: fellowship
    time: "16:00"
holidays:
  - date: "2024-06-12"
    name: Independence Day
`

func newTestApp(t *testing.T) *App {
	t.Helper()
	f, err := seed.Parse(strings.NewReader(seedYAML))
	require.NoError(t, err)
	cfg := &config.Config{
		SessionDuration: time.Hour,
		TokenTTL:        time.Hour,
		JWTSecret:       "jwt",
		CSRFSecret:      "csrf",
		Timezone:        "UTC",
		SeedPath:        "seed.yaml",
		UpcomingDays:    30,
	}
	a, err := New(context.Background(), cfg, dbtest.Open(t), Options{Logger: logging.Discard(), Seed: f})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewRegistersEveryFeed(t *testing.T) {
	a := newTestApp(t)
	assert.ElementsMatch(t, []string{
		service.FeedMembers, service.FeedEvents, service.FeedPresets, service.FeedCalendar,
		service.FeedFamilies, service.FeedMinutes, service.FeedAttendance, service.FeedPrayer,
		"notifications",
	}, a.Hub.Names())
	assert.False(t, a.Email.IsEnabled())

	assert.Same(t, a.Hub, a.Jobs.Feeds)
	for _, name := range a.Jobs.FeedNames {
		_, ok := a.Hub.Feed(name)
		assert.True(t, ok, "daily refresh names a registered feed: %s", name)
	}
}

func TestSeedOnce(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()

	res, err := a.SeedOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Members: 2, Presets: 1}, res)

	res, err = a.SeedOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, res)

	presets, err := a.Events.Presets(ctx)
	require.NoError(t, err)
	assert.Len(t, presets, 1)

	members, err := a.Members.All(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	for _, m := range members {
		if m.FirstName == "Jose" {
			assert.NotZero(t, m.Relatives["spouse"])
		}
	}
}

func TestSendDigestRejectsBadDate(t *testing.T) {
	a := newTestApp(t)
	require.Error(t, a.SendDigest(context.Background(), "June 1"))
	// Email is disabled, so a valid date is a no-op.
	require.NoError(t, a.SendDigest(context.Background(), "2024-06-01"))
}

func TestUserByEmail(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	_, err := a.Auth.Register(ctx, "Admin@Example.com", "long-enough", "Admin")
	require.NoError(t, err)

	u, err := a.UserByEmail(ctx, "ADMIN@example.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin)

	_, err = a.UserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestRunStopsOnCancel(t *testing.T) {
	a := newTestApp(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	// Feeds load as soon as the hub runs.
	feed, ok := a.Hub.Feed(service.FeedMembers)
	require.True(t, ok)
	got := make(chan any, 1)
	unsubscribe := feed.SubscribeAny(func(items any) {
		select {
		case got <- items:
		default:
		}
	})
	defer unsubscribe()

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("members feed never published")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
