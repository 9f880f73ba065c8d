package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/models"
)

func TestAttendanceHistoryExpectedFromOccurrences(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)
	for _, name := range []string{"Ana", "Ben", "Carla"} {
		require.NoError(t, s.members.Create(ctx, &models.Member{FirstName: name, LastName: "Reyes"}))
	}

	records := []*models.Attendance{
		{EventID: "sunday-service-2024-05-26", EventTitle: "Sunday Service", Date: "2024-05-26", TotalAttendees: 2},
		{EventID: "sunday-service-2023-12-31", EventTitle: "Sunday Service", Date: "2023-12-31", TotalAttendees: 3},
		{EventID: "prayer-meeting-2024-05-08", EventTitle: "Online Prayer Meeting", Date: "2024-05-08", TotalAttendees: 1},
		// A Monday: well formed but never generated.
		{EventID: "sunday-service-2024-05-20", EventTitle: "Cleanup", Date: "2024-05-20", TotalAttendees: 4},
	}
	for _, r := range records {
		require.NoError(t, s.attendance.Create(ctx, r))
	}

	history, err := s.attendance.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, len(records))

	byEvent := make(map[string]models.AttendanceRecord, len(history))
	for _, rec := range history {
		byEvent[rec.EventID] = rec
	}

	tests := []struct {
		eventID  string
		source   string
		expected int
	}{
		{"sunday-service-2024-05-26", models.SourceEvent, 3},
		{"sunday-service-2023-12-31", models.SourceEvent, 3},
		{"prayer-meeting-2024-05-08", models.SourceEvent, 3},
		{"sunday-service-2024-05-20", models.SourceAttendance, 0},
	}
	for _, tt := range tests {
		t.Run(tt.eventID, func(t *testing.T) {
			rec, ok := byEvent[tt.eventID]
			require.True(t, ok)
			assert.Equal(t, tt.source, rec.Source)
			assert.Equal(t, tt.expected, rec.ExpectedAttendees)
		})
	}

	assert.Equal(t, "2024-05-26", history[0].Date, "newest first")
}

func TestAttendanceHistoryPersistedEvents(t *testing.T) {
	ctx := context.Background()
	s := newStack(t, june(1, 9), nil)

	picnic := &models.Event{Title: "Picnic", Date: "2024-05-18", Attendees: 40}
	require.NoError(t, s.events.Create(ctx, picnic))
	future := &models.Event{Title: "Retreat", Date: "2024-07-01"}
	require.NoError(t, s.events.Create(ctx, future))
	outing := &models.Event{Title: "Outing", Date: "2024-05-25"}
	require.NoError(t, s.events.Create(ctx, outing))

	require.NoError(t, s.attendance.Create(ctx, &models.Attendance{
		EventID: idString(picnic.ID), EventTitle: "Picnic", Date: "2024-05-18", TotalAttendees: 35,
	}))

	history, err := s.attendance.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2, "the future event is left out")

	assert.Equal(t, "event-"+idString(outing.ID), history[0].ID)
	assert.Equal(t, models.SourceEvent, history[1].Source)
	assert.Equal(t, 40, history[1].ExpectedAttendees)
	assert.Equal(t, 35, history[1].TotalAttendees)
}
