package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/database"
	"churchadmin/internal/database/dbtest"
	"churchadmin/internal/models"
)

func TestMemberRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemberRepository(dbtest.Open(t))

	age := 34
	ana := &models.Member{
		FirstName: "Ana", LastName: "Reyes", Nickname: "Ana", Sex: models.SexFemale, DateOfBirth: "1990-05-10",
		Age: &age, CivilStatus: "Married", Relatives: map[string]int64{"spouse": 2}, Tags: []string{"choir"}, IsMember: true,
	}
	require.NoError(t, repo.Create(ctx, ana))
	require.NotZero(t, ana.ID)

	ben := &models.Member{FirstName: "Ben", LastName: "Reyes", Sex: models.SexMale}
	require.NoError(t, repo.Create(ctx, ben))

	got, err := repo.Get(ctx, ana.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]int64{"spouse": 2}, got.Relatives)
	assert.Equal(t, []string{"choir"}, got.Tags)
	require.NotNil(t, got.Age)
	assert.Equal(t, 34, *got.Age)
	assert.True(t, got.IsMember)

	gotBen, err := repo.Get(ctx, ben.ID)
	require.NoError(t, err)
	assert.Nil(t, gotBen.Age)
	assert.NotNil(t, gotBen.Relatives)
	assert.NotNil(t, gotBen.Tags)

	got.Nickname = "Annie"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, "Annie", got.Nickname)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, ana.ID, all[0].ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, repo.Delete(ctx, ana.ID))
	missing, err := repo.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemberRepositoryMalformedJSON(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	repo := NewMemberRepository(db)

	m := &models.Member{FirstName: "Cora", LastName: "Cruz"}
	require.NoError(t, repo.Create(ctx, m))
	_, err := db.ExecContext(ctx, `UPDATE members SET relatives = 'not json' WHERE id = ?`, m.ID)
	require.NoError(t, err)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Empty(t, all[0].Relatives)
}

func TestEventRepositoryOverrides(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(dbtest.Open(t))

	picnic := &models.Event{Title: "Picnic", Type: models.EventTypeFellowship, Date: "2024-06-15", Time: "08:00", Icon: "Calendar"}
	require.NoError(t, repo.Create(ctx, picnic))

	cancel := &models.Event{Title: "No service", Type: models.EventTypeWorship, Date: "2024-06-02", Time: "09:00",
		OverrideOf: "sunday-service-2024-06-02", IsOverride: true, IsCancelled: true}
	require.NoError(t, repo.Create(ctx, cancel))

	dup := &models.Event{Title: "Again", Date: "2024-06-02", Time: "09:00", OverrideOf: "sunday-service-2024-06-02"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateOverride)

	found, err := repo.FindByOverrideOf(ctx, "sunday-service-2024-06-02")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cancel.ID, found.ID)
	assert.True(t, found.IsCancelled)

	none, err := repo.FindByOverrideOf(ctx, "sunday-service-2024-06-09")
	require.NoError(t, err)
	assert.Nil(t, none)

	plain, err := repo.Get(ctx, picnic.ID)
	require.NoError(t, err)
	assert.Empty(t, plain.OverrideOf, "plain events store NULL and do not collide")

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-06-02", all[0].Date)

	june, err := repo.ListBetween(ctx, "2024-06-10", "2024-06-30")
	require.NoError(t, err)
	require.Len(t, june, 1)
	assert.Equal(t, picnic.ID, june[0].ID)

	overrides, err := repo.ListOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, overrides, 1)
	assert.Equal(t, cancel.ID, overrides[0].ID)

	require.NoError(t, repo.Delete(ctx, cancel.ID))
	found, err = repo.FindByOverrideOf(ctx, "sunday-service-2024-06-02")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMinutesAttendancePrayerRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	minutes := NewMinutesRepository(db)
	m := &models.Minute{Title: "Council", Date: "2024-06-01", Attendees: []int64{1, 2},
		Structure: models.MinuteStructure{Agenda: []models.AgendaItem{{Title: "Outreach", RawNotes: "visit"}}}}
	require.NoError(t, minutes.Create(ctx, m))
	gotMinute, err := minutes.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, gotMinute.Attendees)
	require.Len(t, gotMinute.Structure.Agenda, 1)
	assert.Equal(t, "Outreach", gotMinute.Structure.Agenda[0].Title)

	attendance := NewAttendanceRepository(db)
	a := &models.Attendance{EventID: "sunday-service-2024-06-02", EventTitle: "Sunday Service", Date: "2024-06-02", TotalAttendees: 48}
	require.NoError(t, attendance.Create(ctx, a))
	records, err := attendance.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 48, records[0].TotalAttendees)
	assert.NotNil(t, records[0].Attendees)

	prayers := NewPrayerRepository(db)
	memberID := int64(3)
	c := &models.PrayerConcern{Title: "Healing", MemberID: &memberID, Status: models.PrayerStatusActive, Priority: models.PriorityUrgent}
	require.NoError(t, prayers.Create(ctx, c))
	gotConcern, err := prayers.Get(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, gotConcern.MemberID)
	assert.Equal(t, memberID, *gotConcern.MemberID)

	presets := NewPresetRepository(db)
	p := &models.EventPreset{Name: "Youth night", Title: "Youth Fellowship", Type: models.EventTypeFellowship, Time: "18:00"}
	require.NoError(t, presets.Create(ctx, p))
	list, err := presets.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUserRepositorySessions(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(dbtest.Open(t))

	first, err := repo.CreateUser(ctx, "pastor@example.com", "hash", "Pastor")
	require.NoError(t, err)
	assert.True(t, first.IsAdmin, "first user is admin")

	second, err := repo.CreateUser(ctx, "sec@example.com", "hash", "Secretary")
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)

	require.NoError(t, repo.LinkOAuthProvider(ctx, second.ID, "google", "sub-1"))
	assert.ErrorIs(t, repo.LinkOAuthProvider(ctx, second.ID, "google", "sub-2"), ErrOAuthAlreadyLinked)

	byOAuth, err := repo.GetUserByOAuth(ctx, "google", "sub-1")
	require.NoError(t, err)
	require.NotNil(t, byOAuth)
	assert.Equal(t, second.ID, byOAuth.ID)

	now := time.Now()
	_, err = repo.CreateSession(ctx, "live", first.ID, now.Add(time.Hour))
	require.NoError(t, err)
	_, err = repo.CreateSession(ctx, "stale", first.ID, now.Add(-time.Hour))
	require.NoError(t, err)

	removed, err := repo.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	s, err := repo.GetSession(ctx, "live")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.False(t, s.IsExpired())

	gone, err := repo.GetSession(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestSettingsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(dbtest.Open(t))

	_, ok, err := repo.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	first, err := repo.MarkOnce(ctx, "birthday_digest", "2024-06-01")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkOnce(ctx, "birthday_digest", "2024-06-01")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, repo.SetBool(ctx, "maintenance", true))
	assert.True(t, repo.GetBool(ctx, "maintenance", false))
	assert.True(t, repo.GetBool(ctx, "unset", true))
}

func TestRepositoriesRunInTransaction(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)

	err := db.WithTx(ctx, func(tx *database.Tx) error {
		return NewMemberRepository(tx).Create(ctx, &models.Member{FirstName: "Tx", LastName: "Member"})
	})
	require.NoError(t, err)

	n, err := NewMemberRepository(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
