package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/enhance"
	"churchadmin/internal/models"
)

type scriptedModel struct {
	err      error
	requests []enhance.Request
}

func (m *scriptedModel) Name() string { return "scripted" }

func (m *scriptedModel) Enhance(_ context.Context, req enhance.Request) (string, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	if enhance.IsOverallSummary(req.RawNotes) {
		return "summary of " + req.AgendaTitle, nil
	}
	return "enhanced " + req.AgendaTitle, nil
}

func councilMinute() *models.Minute {
	return &models.Minute{
		Title:     "Church council",
		Date:      "2024-05-26",
		StartTime: "13:00",
		EndTime:   "15:00",
		Attendees: []int64{1, 2, 3},
		Structure: models.MinuteStructure{Agenda: []models.AgendaItem{
			{Title: "Outreach", RawNotes: "We decided to visit Barangay 5. Action: Ana will call the captain."},
			{Title: "Other business"},
			{Title: "Finance", RawNotes: "Budget approved for new chairs."},
		}},
	}
}

func TestMinutesServiceEnhanceMinuteWithModel(t *testing.T) {
	ctx := context.Background()
	model := &scriptedModel{}
	s := newStack(t, june(1, 9), model)

	m := councilMinute()
	require.NoError(t, s.minutes.Create(ctx, m))

	got, err := s.minutes.EnhanceMinute(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "enhanced Outreach", got.Structure.Agenda[0].Enhanced)
	assert.Empty(t, got.Structure.Agenda[1].Enhanced, "items without notes are skipped")
	assert.Equal(t, "summary of Church council", got.Structure.OverallSummary)
	require.Len(t, model.requests, 3)
	assert.True(t, enhance.IsOverallSummary(model.requests[2].RawNotes))

	stored, err := s.minutes.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Structure.OverallSummary, stored.Structure.OverallSummary)
}

func TestMinutesServiceFallsBackToHeuristic(t *testing.T) {
	ctx := context.Background()
	model := &scriptedModel{err: &enhance.UpstreamError{Status: 503, Message: "loading"}}
	s := newStack(t, june(1, 9), model)

	m := councilMinute()
	require.NoError(t, s.minutes.Create(ctx, m))

	got, err := s.minutes.EnhanceMinute(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, strings.Contains(got.Structure.Agenda[0].Enhanced, "Ana will call the captain"))
	assert.NotEmpty(t, got.Structure.OverallSummary)

	_, err = s.minutes.Enhance(ctx, enhance.Request{AgendaTitle: "x", RawNotes: "notes"})
	var upstream *enhance.UpstreamError
	require.True(t, errors.As(err, &upstream), "the enhance endpoint sees upstream failures")
	assert.Equal(t, 503, upstream.Status)
}

func TestMinutesServiceEnhanceWithoutModel(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	_, err := s.minutes.Enhance(ctx, enhance.Request{RawNotes: "  "})
	assert.ErrorIs(t, err, enhance.ErrNoNotes)

	_, err = s.minutes.Enhance(ctx, enhance.Request{RawNotes: "notes"})
	assert.ErrorIs(t, err, enhance.ErrNotConfigured)

	empty := &models.Minute{Title: "Quick sync", Date: "2024-05-30"}
	require.NoError(t, s.minutes.Create(ctx, empty))
	_, err = s.minutes.EnhanceMinute(ctx, empty.ID)
	assert.ErrorIs(t, err, ErrNothingToEnhance)
}

func TestMinutesServiceCRUD(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	bad := &models.Minute{Title: "Bad", Date: "2024-05-30", StartTime: "15:00", EndTime: "14:00"}
	assert.Error(t, s.minutes.Create(ctx, bad))

	older := &models.Minute{Title: "Older", Date: "2024-01-07"}
	newer := &models.Minute{Title: "Newer", Date: "2024-05-05"}
	require.NoError(t, s.minutes.Create(ctx, older))
	require.NoError(t, s.minutes.Create(ctx, newer))

	list, err := s.minutes.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Newer", list[0].Title)

	newer.Location = "Church office"
	require.NoError(t, s.minutes.Update(ctx, newer))
	require.NoError(t, s.minutes.Delete(ctx, older.ID))
	assert.ErrorIs(t, s.minutes.Delete(ctx, older.ID), ErrMinuteNotFound)
	assert.Equal(t, 4, s.refresh.count(FeedAttendance))
}

func TestAttendanceHistory(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC), nil)
	require.NoError(t, s.members.Create(ctx, &models.Member{FirstName: "Ana", LastName: "Reyes"}))

	outreach := &models.Event{Title: "Outreach", Type: models.EventTypeOutreach, Date: "2024-06-08", Attendees: 20}
	future := &models.Event{Title: "Camp", Date: "2024-07-01"}
	unrecorded := &models.Event{Title: "Choir practice", Type: models.EventTypeMeeting, Date: "2024-06-05", Attendees: 12}
	for _, e := range []*models.Event{outreach, future, unrecorded} {
		require.NoError(t, s.events.Create(ctx, e))
	}
	require.NoError(t, s.minutes.Create(ctx, &models.Minute{Title: "Council", Date: "2024-06-09", Attendees: []int64{1}}))
	require.NoError(t, s.minutes.Create(ctx, &models.Minute{Title: "Next council", Date: "2024-07-07"}))

	linked := &models.Attendance{EventID: idString(outreach.ID), EventTitle: "Outreach", Date: "2024-06-08", TotalAttendees: 18}
	sunday := &models.Attendance{EventID: "sunday-service-2024-06-09", EventTitle: "Sunday Service", Date: "2024-06-09", Attendees: []int64{1}}
	adhoc := &models.Attendance{EventTitle: "Home visit", Date: "2024-06-01", TotalAttendees: 4}
	for _, a := range []*models.Attendance{linked, sunday, adhoc} {
		require.NoError(t, s.attendance.Create(ctx, a))
	}
	assert.Equal(t, 1, sunday.TotalAttendees, "head count defaults to named attendees")

	history, err := s.attendance.History(ctx)
	require.NoError(t, err)

	var titles []string
	for i, r := range history {
		titles = append(titles, r.EventTitle)
		if i > 0 {
			assert.GreaterOrEqual(t, history[i-1].Date, r.Date)
		}
	}
	assert.ElementsMatch(t, []string{"Outreach", "Sunday Service", "Home visit", "Council", "Choir practice"}, titles)
	assert.NotContains(t, titles, "Camp")
	assert.NotContains(t, titles, "Next council")

	for _, r := range history {
		switch r.EventTitle {
		case "Outreach":
			assert.Equal(t, models.SourceEvent, r.Source)
			assert.Equal(t, 20, r.ExpectedAttendees)
		case "Sunday Service":
			assert.Equal(t, models.SourceEvent, r.Source)
			assert.Equal(t, 1, r.ExpectedAttendees)
		case "Home visit":
			assert.Equal(t, models.SourceAttendance, r.Source)
		case "Council":
			assert.Equal(t, models.SourceMinute, r.Source)
			assert.Equal(t, 1, r.TotalAttendees)
		case "Choir practice":
			assert.Equal(t, models.SourceEvent, r.Source)
			assert.Equal(t, 12, r.ExpectedAttendees)
			assert.Zero(t, r.TotalAttendees)
		}
	}
}
