package seed_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/database/dbtest"
	"churchadmin/internal/logging"
	"churchadmin/internal/repository"
	"churchadmin/internal/seed"
	"churchadmin/internal/service"
)

const doc = `
members:
  - key: jose
    first_name: Jose
    last_name: Cruz
    date_of_birth: "1960-01-15"
    relatives: {spouse: maria, cousin: nobody}
  - key: maria
    first_name: Maria
    last_name: Cruz
    sex: Female
    relatives: {spouse: jose}
presets:
  - name: Youth night
    title: Youth Fellowship
    type: fellowship
    time: "18:00"
events:
  - title: Church Anniversary
    type: celebration
    date: "2024-09-01"
holidays:
  - date: "2024-06-12"
    name: Independence Day
`

func TestParse(t *testing.T) {
	f, err := seed.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, f.Members, 2)
	assert.Equal(t, map[string]string{"2024-06-12": "Independence Day"}, f.HolidayMap())

	_, err = seed.Parse(strings.NewReader("members:\n  - key: a\n  - key: a\n"))
	assert.ErrorContains(t, err, "duplicate member key")

	_, err = seed.Parse(strings.NewReader("memberz: []\n"))
	assert.Error(t, err)

	empty, err := seed.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Members)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	members := service.NewMemberService(repository.NewMemberRepository(db), nil, nil)
	events := service.NewEventService(repository.NewEventRepository(db), repository.NewPresetRepository(db), nil)

	f, err := seed.Parse(strings.NewReader(doc))
	require.NoError(t, err)

	res, err := seed.Apply(ctx, f, members, events, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, seed.Result{Members: 2, Presets: 1, Events: 1}, res)

	all, err := members.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	byName := map[string]int64{}
	for _, m := range all {
		byName[m.FirstName] = m.ID
	}
	for _, m := range all {
		if m.FirstName == "Jose" {
			assert.Equal(t, map[string]int64{"spouse": byName["Maria"]}, m.Relatives, "unknown keys are dropped")
		}
	}

	again, err := seed.Apply(ctx, f, members, events, logging.Discard())
	require.NoError(t, err)
	assert.Zero(t, again.Members, "members are only seeded into an empty directory")
}
