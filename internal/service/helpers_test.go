package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"churchadmin/internal/calendar"
	"churchadmin/internal/database"
	"churchadmin/internal/database/dbtest"
	"churchadmin/internal/enhance"
	"churchadmin/internal/logging"
	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/security"
)

// recorder remembers which feeds were refreshed.
type recorder struct {
	mu    sync.Mutex
	feeds map[string]int
}

func (r *recorder) Refresh(names ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.feeds == nil {
		r.feeds = map[string]int{}
	}
	for _, n := range names {
		r.feeds[n]++
	}
}

func (r *recorder) count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feeds[name]
}

type alertRecorder struct {
	mu     sync.Mutex
	alerts []string
}

func (a *alertRecorder) SendPrayerAlert(_ context.Context, c *models.PrayerConcern) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.alerts = append(a.alerts, c.Title)
	return nil
}

// stack wires every service against a fresh database with a pinned clock.
type stack struct {
	db         *database.DB
	now        time.Time
	refresh    *recorder
	alerts     *alertRecorder
	members    *MemberService
	events     *EventService
	calendar   *CalendarService
	families   *FamilyService
	minutes    *MinutesService
	attendance *AttendanceService
	prayer     *PrayerService
	auth       *AuthService
}

func newStack(t *testing.T, now time.Time, model enhance.Enhancer) *stack {
	t.Helper()
	s := &stack{db: dbtest.Open(t), now: now, refresh: &recorder{}, alerts: &alertRecorder{}}
	clock := func() time.Time { return s.now }
	logger := logging.Discard()

	s.members = NewMemberService(repository.NewMemberRepository(s.db), s.refresh, clock)
	s.events = NewEventService(repository.NewEventRepository(s.db), repository.NewPresetRepository(s.db), s.refresh)
	s.calendar = NewCalendarService(s.members, s.events, calendar.DefaultSettings, map[string]string{"2024-06-12": "Independence Day"}, clock)
	s.families = NewFamilyService(s.members)
	s.minutes = NewMinutesService(repository.NewMinutesRepository(s.db), model,
		enhance.NewFallback(model, enhance.Heuristic{}, logger), s.refresh)
	s.attendance = NewAttendanceService(repository.NewAttendanceRepository(s.db), s.minutes, s.calendar, s.refresh)
	s.prayer = NewPrayerService(repository.NewPrayerRepository(s.db), s.members, s.alerts, s.refresh, clock, logger)
	s.auth = NewAuthService(repository.NewUserRepository(s.db), security.NewTokenManager("test-secret", time.Hour), 24*time.Hour, clock)
	return s
}

func june(day, hour int) time.Time {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, time.UTC)
}

func idString(id int64) string {
	return strconv.FormatInt(id, 10)
}
