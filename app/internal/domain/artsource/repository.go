package artsource

import "context"

type Repository interface {
	Create(ctx context.Context, s *Source) (*Source, error)
	Update(ctx context.Context, s *Source) (*Source, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Source, error)
	List(ctx context.Context, filter ListFilter) ([]*Source, error)
}
