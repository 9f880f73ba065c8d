package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"churchadmin/internal/metrics"
	"churchadmin/internal/models"
)

// emailSender is the part of the SES client the service uses.
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     emailSender
	fromEmail  string
	fromName   string
	appBaseURL string
	churchName string
	recipients []string
	enabled    bool
	logger     *slog.Logger
}

// EmailConfig configures the email service.
type EmailConfig struct {
	AWSRegion  string
	FromEmail  string
	FromName   string
	AppBaseURL string
	ChurchName string
	// Recipients receive the birthday digest and urgent prayer alerts.
	Recipients []string
}

// NewEmailService creates a new email service. Without a sender address or
// recipients the service is created disabled and every send is a no-op.
func NewEmailService(ctx context.Context, cfg EmailConfig, logger *slog.Logger) (*EmailService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &EmailService{
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: strings.TrimRight(cfg.AppBaseURL, "/"),
		churchName: cfg.ChurchName,
		recipients: cfg.Recipients,
		logger:     logger.With("component", "email"),
	}
	if cfg.FromEmail == "" || len(cfg.Recipients) == 0 {
		s.logger.Info("email service disabled: SES_FROM_EMAIL or REMINDER_RECIPIENTS not configured")
		return s, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	s.client = sesv2.NewFromConfig(awsCfg)
	s.enabled = true
	s.logger.Info("email service enabled", "from", cfg.FromEmail, "region", cfg.AWSRegion, "recipients", len(cfg.Recipients))
	return s, nil
}

// newEmailServiceWithSender builds an enabled service around any sender.
func newEmailServiceWithSender(sender emailSender, cfg EmailConfig, logger *slog.Logger) *EmailService {
	return &EmailService{
		client:     sender,
		fromEmail:  cfg.FromEmail,
		fromName:   cfg.FromName,
		appBaseURL: strings.TrimRight(cfg.AppBaseURL, "/"),
		churchName: cfg.ChurchName,
		recipients: cfg.Recipients,
		enabled:    true,
		logger:     logger,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

const emailStyle = `
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a6fa5; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.urgent { background-color: #c0392b; }
		.button { display: inline-block; padding: 12px 30px; background-color: #4a6fa5; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }`

func (s *EmailService) wrapHTML(headerClass, heading, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>%s
	</style>
</head>
<body>
	<div class="container">
		<div class="header %s">
			<h1>%s</h1>
		</div>
		<div class="content">
%s
			<p style="text-align: center;">
				<a href="%s" class="button">Open Church Admin</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from %s. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, emailStyle, headerClass, html.EscapeString(heading), body, s.appBaseURL, html.EscapeString(s.churchName))
}

// SendBirthdayDigest emails the day's birthdays and the ones coming up.
// Nothing is sent when both lists are empty.
func (s *EmailService) SendBirthdayDigest(ctx context.Context, date string, today, upcoming []models.CalendarEvent) error {
	if len(today) == 0 && len(upcoming) == 0 {
		return nil
	}
	if !s.enabled {
		s.logger.Debug("skipping birthday digest (service disabled)", "date", date)
		return nil
	}

	subject := fmt.Sprintf("%s birthdays for %s", s.churchName, date)

	var htmlBody, textBody strings.Builder
	writeBirthdays := func(heading string, events []models.CalendarEvent) {
		if len(events) == 0 {
			return
		}
		fmt.Fprintf(&htmlBody, "\t\t\t<h2>%s</h2>\n\t\t\t<ul>\n", html.EscapeString(heading))
		fmt.Fprintf(&textBody, "%s\n", heading)
		for _, ev := range events {
			line := fmt.Sprintf("%s: %s", ev.Date, ev.Description)
			fmt.Fprintf(&htmlBody, "\t\t\t\t<li>%s</li>\n", html.EscapeString(line))
			fmt.Fprintf(&textBody, "- %s\n", line)
		}
		htmlBody.WriteString("\t\t\t</ul>\n")
		textBody.WriteString("\n")
	}
	writeBirthdays("Celebrating today", today)
	writeBirthdays("Coming up", upcoming)
	textBody.WriteString("---\nThis is an automated email from " + s.churchName + ". Please do not reply.\n")

	return s.sendAll(ctx, "birthday_digest", subject, s.wrapHTML("", "Birthday Reminders", htmlBody.String()), textBody.String())
}

// SendPrayerAlert emails an urgent prayer concern.
func (s *EmailService) SendPrayerAlert(ctx context.Context, c *models.PrayerConcern) error {
	if !s.enabled {
		s.logger.Debug("skipping prayer alert (service disabled)", "concern", c.ID)
		return nil
	}

	subject := "Urgent prayer request: " + c.Title
	who := c.MemberName
	if who == "" {
		who = "the congregation"
	}

	body := fmt.Sprintf("\t\t\t<p>An urgent prayer concern was added for <strong>%s</strong>.</p>\n\t\t\t<h2>%s</h2>\n\t\t\t<p>%s</p>\n",
		html.EscapeString(who), html.EscapeString(c.Title), html.EscapeString(c.Description))
	text := fmt.Sprintf("An urgent prayer concern was added for %s.\n\n%s\n%s\n\nOpen Church Admin: %s\n",
		who, c.Title, c.Description, s.appBaseURL)

	return s.sendAll(ctx, "prayer_alert", subject, s.wrapHTML("urgent", "Urgent Prayer Request", body), text)
}

func (s *EmailService) sendAll(ctx context.Context, kind, subject, htmlBody, textBody string) error {
	var failed []string
	for _, to := range s.recipients {
		err := s.sendEmail(ctx, to, subject, htmlBody, textBody)
		metrics.EmailsSent.WithLabelValues(kind, metrics.Result(err)).Inc()
		if err != nil {
			s.logger.Error("failed to send email", "kind", kind, "to", to, "error", err)
			failed = append(failed, to)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to send %s to %s", kind, strings.Join(failed, ", "))
	}
	return nil
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	s.logger.Info("email sent", "to", toEmail, "subject", subject, "message_id", aws.ToString(result.MessageId))
	return nil
}
