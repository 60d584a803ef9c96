package user

import "context"

type Repository interface {
	Create(ctx context.Context, p *Profile) (*Profile, error)
	GetByID(ctx context.Context, id int64) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	List(ctx context.Context, filter ListFilter) ([]*Profile, error)
	Update(ctx context.Context, p *Profile) (*Profile, error)
}
