package artsource

import (
	"context"
	"net/url"
	"strings"

	dom "example.com/mystic-prints/app/internal/domain/artsource"
)

type Service struct {
	repo dom.Repository
}

func NewService(repo dom.Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name   string
	URL    string
	Active *bool
}

type UpdateInput struct {
	ID     int64
	Name   *string
	URL    *string
	Active *bool
}

// Create adds a source; sources are active unless stated otherwise.
func (s *Service) Create(ctx context.Context, in CreateInput) (*dom.Source, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dom.ErrInvalidName
	}
	if !validURL(in.URL) {
		return nil, dom.ErrInvalidURL
	}

	src := &dom.Source{Name: name, URL: in.URL, Active: true}
	if in.Active != nil {
		src.Active = *in.Active
	}
	return s.repo.Create(ctx, src)
}

func (s *Service) Update(ctx context.Context, in UpdateInput) (*dom.Source, error) {
	existed, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, dom.ErrInvalidName
		}
		existed.Name = name
	}
	if in.URL != nil {
		if !validURL(*in.URL) {
			return nil, dom.ErrInvalidURL
		}
		existed.URL = *in.URL
	}
	if in.Active != nil {
		existed.Active = *in.Active
	}

	return s.repo.Update(ctx, existed)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Source, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Source, error) {
	return s.repo.List(ctx, filter)
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
