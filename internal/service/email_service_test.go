package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churchadmin/internal/logging"
	"churchadmin/internal/models"
)

type stubSender struct {
	mu   sync.Mutex
	to   []string
	subj []string
	fail map[string]bool
}

func (s *stubSender) SendEmail(_ context.Context, in *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	to := in.Destination.ToAddresses[0]
	s.to = append(s.to, to)
	s.subj = append(s.subj, *in.Content.Simple.Subject.Data)
	if s.fail[to] {
		return nil, errors.New("mailbox unavailable")
	}
	return &sesv2.SendEmailOutput{}, nil
}

func testEmailConfig() EmailConfig {
	return EmailConfig{
		FromEmail:  "office@example.org",
		FromName:   "Church Office",
		ChurchName: "Grace Chapel",
		AppBaseURL: "https://admin.example.org",
		Recipients: []string{"pastor@example.org", "elders@example.org"},
	}
}

func TestEmailServiceDisabledWithoutRecipients(t *testing.T) {
	cfg := testEmailConfig()
	cfg.Recipients = nil
	svc, err := NewEmailService(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.SendPrayerAlert(context.Background(), &models.PrayerConcern{Title: "Surgery"}))
}

func TestEmailServiceBirthdayDigest(t *testing.T) {
	sender := &stubSender{}
	svc := newEmailServiceWithSender(sender, testEmailConfig(), logging.Discard())
	ctx := context.Background()

	require.NoError(t, svc.SendBirthdayDigest(ctx, "2024-06-01", nil, nil))
	assert.Empty(t, sender.to, "nothing to announce")

	today := []models.CalendarEvent{{Date: "2024-06-01", Description: "Lito Bautista turns 44"}}
	require.NoError(t, svc.SendBirthdayDigest(ctx, "2024-06-01", today, nil))
	assert.Equal(t, []string{"pastor@example.org", "elders@example.org"}, sender.to)
	assert.Equal(t, "Grace Chapel birthdays for 2024-06-01", sender.subj[0])
}

func TestEmailServicePrayerAlertReportsFailures(t *testing.T) {
	sender := &stubSender{fail: map[string]bool{"elders@example.org": true}}
	svc := newEmailServiceWithSender(sender, testEmailConfig(), logging.Discard())

	err := svc.SendPrayerAlert(context.Background(), &models.PrayerConcern{Title: "Surgery", MemberName: "Ana Reyes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "elders@example.org")
	assert.Len(t, sender.to, 2, "a failed recipient does not stop the others")
	assert.Equal(t, "Urgent prayer request: Surgery", sender.subj[0])
}
