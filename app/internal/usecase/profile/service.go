package profile

import (
	"context"
	"strings"

	dom "example.com/mystic-prints/app/internal/domain/user"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

type UpdateInput struct {
	ID        int64
	FirstName *string
	LastName  *string
}

type UpdateRoleInput struct {
	Executor *dom.Identity
	ID       int64
	RoleCode dom.RoleCode
}

func (s *Service) Get(ctx context.Context, id int64) (*dom.Profile, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Profile, error) {
	if filter.RoleCode != nil && !filter.RoleCode.IsValid() {
		return nil, dom.ErrInvalidRoleCode
	}
	return s.repo.List(ctx, filter)
}

// Update changes the names of a profile; nil fields are left as they are.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*dom.Profile, error) {
	p, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if in.FirstName != nil {
		p.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		p.LastName = strings.TrimSpace(*in.LastName)
	}
	return s.repo.Update(ctx, p)
}

// UpdateRole is an admin operation. Admins cannot change their own role.
func (s *Service) UpdateRole(ctx context.Context, in UpdateRoleInput) (*dom.Profile, error) {
	if !in.RoleCode.IsValid() {
		return nil, dom.ErrInvalidRoleCode
	}
	if in.Executor == nil || !in.Executor.RoleCode.IsAdmin() {
		return nil, dom.ErrUnauthorized
	}
	if in.Executor.UserID == in.ID {
		return nil, dom.ErrCannotDemoteSelf
	}

	p, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	p.RoleCode = in.RoleCode
	return s.repo.Update(ctx, p)
}
