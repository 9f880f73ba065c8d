package service

import (
	"context"
	"fmt"
	"strings"

	"churchadmin/internal/enhance"
	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/validation"
)

// MinutesService manages meeting minutes and their AI-assisted summaries.
type MinutesService struct {
	repo *repository.MinutesRepository
	// model is the hosted enhancer used by the enhance endpoint; nil when
	// no API key is configured.
	model enhance.Enhancer
	// formatter never fails for non-empty notes: model first, heuristic after.
	formatter enhance.Enhancer
	refresh   Refresher
}

// NewMinutesService creates a new minutes service. model may be nil.
func NewMinutesService(repo *repository.MinutesRepository, model, formatter enhance.Enhancer, refresh Refresher) *MinutesService {
	if formatter == nil {
		formatter = enhance.Heuristic{}
	}
	return &MinutesService{repo: repo, model: model, formatter: formatter, refresh: refresherOrNoop(refresh)}
}

// List returns minutes, newest first.
func (s *MinutesService) List(ctx context.Context) ([]models.Minute, error) {
	minutes, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list minutes: %w", err)
	}
	return minutes, nil
}

// Get returns a minute or ErrMinuteNotFound.
func (s *MinutesService) Get(ctx context.Context, id int64) (*models.Minute, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get minute: %w", err)
	}
	if m == nil {
		return nil, ErrMinuteNotFound
	}
	return m, nil
}

func normalizeMinute(m *models.Minute) {
	m.Title = strings.TrimSpace(m.Title)
	if m.Attendees == nil {
		m.Attendees = []int64{}
	}
}

// Create stores new minutes.
func (s *MinutesService) Create(ctx context.Context, m *models.Minute) error {
	m.ID = 0
	normalizeMinute(m)
	if err := validation.ValidateMinute(m); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return fmt.Errorf("failed to create minute: %w", err)
	}
	s.changed()
	return nil
}

// Update replaces existing minutes.
func (s *MinutesService) Update(ctx context.Context, m *models.Minute) error {
	if _, err := s.Get(ctx, m.ID); err != nil {
		return err
	}
	normalizeMinute(m)
	if err := validation.ValidateMinute(m); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return fmt.Errorf("failed to update minute: %w", err)
	}
	s.changed()
	return nil
}

// Delete removes minutes.
func (s *MinutesService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete minute: %w", err)
	}
	s.changed()
	return nil
}

// Minutes feed the attendance history.
func (s *MinutesService) changed() {
	s.refresh.Refresh(FeedMinutes, FeedAttendance)
}

// Enhance runs the hosted model on one request without falling back, so the
// caller sees upstream failures.
func (s *MinutesService) Enhance(ctx context.Context, req enhance.Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	if s.model == nil {
		return "", enhance.ErrNotConfigured
	}
	return s.model.Enhance(ctx, req)
}

// EnhanceMinute formats every agenda item that has notes, then summarises
// the whole meeting, and saves the result.
func (s *MinutesService) EnhanceMinute(ctx context.Context, id int64) (*models.Minute, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	overall := enhance.JoinAgenda(m.Structure.Agenda)
	if overall == "" {
		return nil, ErrNothingToEnhance
	}

	for i := range m.Structure.Agenda {
		item := &m.Structure.Agenda[i]
		if strings.TrimSpace(item.RawNotes) == "" {
			continue
		}
		out, err := s.formatter.Enhance(ctx, enhance.Request{AgendaTitle: item.Title, RawNotes: item.RawNotes})
		if err != nil {
			return nil, fmt.Errorf("failed to enhance %q: %w", item.Title, err)
		}
		item.Enhanced = out
	}

	summary, err := s.formatter.Enhance(ctx, enhance.Request{AgendaTitle: m.Title, RawNotes: overall})
	if err != nil {
		return nil, fmt.Errorf("failed to summarise meeting: %w", err)
	}
	m.Structure.OverallSummary = summary
	m.Structure.RawDiscussions = overall

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to save enhanced minute: %w", err)
	}
	s.changed()
	return m, nil
}
