package service

import (
	"context"

	"churchadmin/internal/family"
	"churchadmin/internal/roster"
)

// FamilyService groups the directory into families.
type FamilyService struct {
	members *MemberService
}

// NewFamilyService creates a new family service
func NewFamilyService(members *MemberService) *FamilyService {
	return &FamilyService{members: members}
}

// Groups clusters the members matching filter. Relatives hidden by the
// filter still connect the visible members of a family.
func (s *FamilyService) Groups(ctx context.Context, filter roster.Filter, opts family.Options) ([]family.Cluster, error) {
	all, err := s.members.All(ctx)
	if err != nil {
		return nil, err
	}
	return family.Group(all, roster.Apply(all, filter), opts), nil
}
