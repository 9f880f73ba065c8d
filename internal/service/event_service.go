package service

import (
	"context"
	"errors"
	"fmt"

	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/validation"
)

// EventService manages persisted events, override events and presets.
type EventService struct {
	events  *repository.EventRepository
	presets *repository.PresetRepository
	refresh Refresher
}

// NewEventService creates a new event service
func NewEventService(events *repository.EventRepository, presets *repository.PresetRepository, refresh Refresher) *EventService {
	return &EventService{events: events, presets: presets, refresh: refresherOrNoop(refresh)}
}

// List returns every persisted event ordered by date.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Between returns the persisted events dated from..to inclusive.
func (s *EventService) Between(ctx context.Context, from, to string) ([]models.Event, error) {
	events, err := s.events.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// Overrides returns every override event, whatever its date.
func (s *EventService) Overrides(ctx context.Context) ([]models.Event, error) {
	events, err := s.events.ListOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return events, nil
}

// Get returns an event or ErrEventNotFound.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	e, err := s.events.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if e == nil {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// FindOverride returns the event overriding virtualID, or nil.
func (s *EventService) FindOverride(ctx context.Context, virtualID string) (*models.Event, error) {
	e, err := s.events.FindByOverrideOf(ctx, virtualID)
	if err != nil {
		return nil, fmt.Errorf("failed to find override: %w", err)
	}
	return e, nil
}

// Create stores a new event. An event with OverrideOf set fails with
// ErrOverrideExists when that occurrence is already overridden.
func (s *EventService) Create(ctx context.Context, e *models.Event) error {
	e.ID = 0
	e.ApplyDefaults()
	if err := validation.ValidateEvent(e); err != nil {
		return err
	}
	if e.OverrideOf != "" {
		existing, err := s.FindOverride(ctx, e.OverrideOf)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrOverrideExists
		}
	}
	if err := s.events.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateOverride) {
			return ErrOverrideExists
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	s.changed()
	return nil
}

// Update replaces an existing event.
func (s *EventService) Update(ctx context.Context, e *models.Event) error {
	if _, err := s.Get(ctx, e.ID); err != nil {
		return err
	}
	e.ApplyDefaults()
	if err := validation.ValidateEvent(e); err != nil {
		return err
	}
	if err := s.events.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicateOverride) {
			return ErrOverrideExists
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	s.changed()
	return nil
}

// Delete removes an event. Deleting an override restores the occurrence.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.changed()
	return nil
}

// RestoreOccurrence deletes the override of virtualID.
func (s *EventService) RestoreOccurrence(ctx context.Context, virtualID string) error {
	e, err := s.FindOverride(ctx, virtualID)
	if err != nil {
		return err
	}
	if e == nil {
		return ErrEventNotFound
	}
	return s.Delete(ctx, e.ID)
}

func (s *EventService) changed() {
	s.refresh.Refresh(FeedEvents, FeedCalendar, FeedAttendance)
}

// Presets returns every event preset.
func (s *EventService) Presets(ctx context.Context) ([]models.EventPreset, error) {
	presets, err := s.presets.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}
	return presets, nil
}

// GetPreset returns a preset or ErrPresetNotFound.
func (s *EventService) GetPreset(ctx context.Context, id int64) (*models.EventPreset, error) {
	p, err := s.presets.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get preset: %w", err)
	}
	if p == nil {
		return nil, ErrPresetNotFound
	}
	return p, nil
}

func applyPresetDefaults(p *models.EventPreset) {
	if p.Type == "" {
		p.Type = models.DefaultEventType
	}
	if p.Time == "" {
		p.Time = models.DefaultEventTime
	}
	if p.Icon == "" {
		p.Icon = models.DefaultEventIcon
	}
}

// CreatePreset stores a new preset.
func (s *EventService) CreatePreset(ctx context.Context, p *models.EventPreset) error {
	p.ID = 0
	applyPresetDefaults(p)
	if err := validation.ValidatePreset(p); err != nil {
		return err
	}
	if err := s.presets.Create(ctx, p); err != nil {
		return fmt.Errorf("failed to create preset: %w", err)
	}
	s.refresh.Refresh(FeedPresets)
	return nil
}

// UpdatePreset replaces an existing preset.
func (s *EventService) UpdatePreset(ctx context.Context, p *models.EventPreset) error {
	if _, err := s.GetPreset(ctx, p.ID); err != nil {
		return err
	}
	applyPresetDefaults(p)
	if err := validation.ValidatePreset(p); err != nil {
		return err
	}
	if err := s.presets.Update(ctx, p); err != nil {
		return fmt.Errorf("failed to update preset: %w", err)
	}
	s.refresh.Refresh(FeedPresets)
	return nil
}

// DeletePreset removes a preset.
func (s *EventService) DeletePreset(ctx context.Context, id int64) error {
	if _, err := s.GetPreset(ctx, id); err != nil {
		return err
	}
	if err := s.presets.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete preset: %w", err)
	}
	s.refresh.Refresh(FeedPresets)
	return nil
}

// CreateFromPreset creates an event on date using a preset as the template.
func (s *EventService) CreateFromPreset(ctx context.Context, presetID int64, date string) (*models.Event, error) {
	p, err := s.GetPreset(ctx, presetID)
	if err != nil {
		return nil, err
	}
	e := &models.Event{
		Title:       p.Title,
		Type:        p.Type,
		Date:        date,
		Time:        p.Time,
		Location:    p.Location,
		Description: p.Description,
		Icon:        p.Icon,
	}
	if err := s.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}
