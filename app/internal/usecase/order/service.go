package order

import (
	"context"

	domorder "example.com/mystic-prints/app/internal/domain/order"
)

type Service struct {
	repo domorder.Repository
}

func NewService(repo domorder.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateStatus moves a placed order along the provider states. Orders enter
// and leave the cart status only through checkout.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	if !status.IsValid() {
		return nil, domorder.ErrInvalidStatus
	}
	if status == domorder.StatusCart {
		return nil, domorder.ErrInvalidTransition
	}

	existed, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existed.Status == domorder.StatusCart {
		return nil, domorder.ErrInvalidTransition
	}
	return s.repo.UpdateStatus(ctx, id, status)
}
