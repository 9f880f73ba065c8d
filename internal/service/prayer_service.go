package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"churchadmin/internal/calendar"
	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/validation"
)

// PrayerAlerter is notified about urgent prayer concerns. *EmailService
// satisfies it.
type PrayerAlerter interface {
	SendPrayerAlert(ctx context.Context, c *models.PrayerConcern) error
}

// PrayerService manages prayer concerns.
type PrayerService struct {
	repo    *repository.PrayerRepository
	members *MemberService
	alerter PrayerAlerter
	refresh Refresher
	now     Clock
	logger  *slog.Logger
}

// NewPrayerService creates a new prayer service. alerter may be nil.
func NewPrayerService(repo *repository.PrayerRepository, members *MemberService, alerter PrayerAlerter, refresh Refresher, now Clock, logger *slog.Logger) *PrayerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PrayerService{
		repo:    repo,
		members: members,
		alerter: alerter,
		refresh: refresherOrNoop(refresh),
		now:     clockOrNow(now),
		logger:  logger,
	}
}

// List returns concerns, newest first.
func (s *PrayerService) List(ctx context.Context) ([]models.PrayerConcern, error) {
	concerns, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list prayer concerns: %w", err)
	}
	return concerns, nil
}

// Get returns a concern or ErrConcernNotFound.
func (s *PrayerService) Get(ctx context.Context, id int64) (*models.PrayerConcern, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prayer concern: %w", err)
	}
	if c == nil {
		return nil, ErrConcernNotFound
	}
	return c, nil
}

// normalize fills defaults and copies the member's name when a member is linked.
func (s *PrayerService) normalize(ctx context.Context, c *models.PrayerConcern) error {
	c.Title = strings.TrimSpace(c.Title)
	if c.Status == "" {
		c.Status = models.PrayerStatusActive
	}
	if c.Priority == "" {
		c.Priority = models.PriorityNormal
	}
	if c.Date == "" {
		c.Date = calendar.FormatDate(calendar.Today(s.now()))
	}
	if c.MemberID != nil && c.MemberName == "" {
		m, err := s.members.Get(ctx, *c.MemberID)
		if err != nil {
			return err
		}
		c.MemberName = m.FullName()
	}
	return nil
}

// Create stores a new concern and raises an alert when it is urgent.
func (s *PrayerService) Create(ctx context.Context, c *models.PrayerConcern) error {
	c.ID = 0
	if err := s.normalize(ctx, c); err != nil {
		return err
	}
	if err := validation.ValidatePrayerConcern(c); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return fmt.Errorf("failed to create prayer concern: %w", err)
	}
	s.refresh.Refresh(FeedPrayer)
	if c.Priority == models.PriorityUrgent {
		s.alert(ctx, c)
	}
	return nil
}

// Update replaces a concern. An alert is raised only when the concern
// becomes urgent.
func (s *PrayerService) Update(ctx context.Context, c *models.PrayerConcern) error {
	prev, err := s.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.normalize(ctx, c); err != nil {
		return err
	}
	if err := validation.ValidatePrayerConcern(c); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to update prayer concern: %w", err)
	}
	s.refresh.Refresh(FeedPrayer)
	if c.Priority == models.PriorityUrgent && prev.Priority != models.PriorityUrgent {
		s.alert(ctx, c)
	}
	return nil
}

// Delete removes a concern.
func (s *PrayerService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete prayer concern: %w", err)
	}
	s.refresh.Refresh(FeedPrayer)
	return nil
}

// A failed alert does not undo the write.
func (s *PrayerService) alert(ctx context.Context, c *models.PrayerConcern) {
	if s.alerter == nil {
		return
	}
	if err := s.alerter.SendPrayerAlert(ctx, c); err != nil {
		s.logger.Error("failed to send prayer alert", "concern", c.ID, "error", err)
	}
}
