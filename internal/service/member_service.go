package service

import (
	"context"
	"fmt"

	"churchadmin/internal/models"
	"churchadmin/internal/repository"
	"churchadmin/internal/roster"
	"churchadmin/internal/validation"
)

// MemberService manages the church directory.
type MemberService struct {
	repo    *repository.MemberRepository
	refresh Refresher
	now     Clock
}

// NewMemberService creates a new member service
func NewMemberService(repo *repository.MemberRepository, refresh Refresher, now Clock) *MemberService {
	return &MemberService{repo: repo, refresh: refresherOrNoop(refresh), now: clockOrNow(now)}
}

// All returns every member ordered by id.
func (s *MemberService) All(ctx context.Context) ([]models.Member, error) {
	members, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// ListQuery narrows and orders the directory listing.
type ListQuery struct {
	Filter roster.Filter
	Sort   roster.SortKey
	Order  roster.Order
}

// List returns the members matching q, sorted by q.Sort.
func (s *MemberService) List(ctx context.Context, q ListQuery) ([]models.Member, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := roster.Apply(all, q.Filter)
	if q.Sort == "" {
		q.Sort = roster.SortByName
	}
	if q.Order == "" {
		q.Order = roster.Asc
	}
	roster.Sort(out, q.Sort, q.Order)
	return out, nil
}

// Tags returns every tag in use, sorted.
func (s *MemberService) Tags(ctx context.Context) ([]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return roster.AllTags(all), nil
}

// Get returns a member or ErrMemberNotFound.
func (s *MemberService) Get(ctx context.Context, id int64) (*models.Member, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if m == nil {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// Create stores a new member after filling in defaults.
func (s *MemberService) Create(ctx context.Context, m *models.Member) error {
	m.ID = 0
	roster.ApplyDefaults(m, s.now())
	if err := validation.ValidateMember(m); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	s.changed()
	return nil
}

// Update replaces an existing member.
func (s *MemberService) Update(ctx context.Context, m *models.Member) error {
	if _, err := s.Get(ctx, m.ID); err != nil {
		return err
	}
	roster.ApplyDefaults(m, s.now())
	if err := validation.ValidateMember(m); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	s.changed()
	return nil
}

// Delete removes a member. Relatives pointing at the member are left as
// dangling edges, which family grouping ignores.
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	s.changed()
	return nil
}

// Count returns the number of members, which is also the expected
// attendance of recurring events.
func (s *MemberService) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	return n, nil
}

// Birthdays and expected attendance depend on the directory.
func (s *MemberService) changed() {
	s.refresh.Refresh(FeedMembers, FeedCalendar, FeedFamilies)
}
