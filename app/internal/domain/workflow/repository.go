package workflow

import "context"

type Repository interface {
	Create(ctx context.Context, w *Workflow) (*Workflow, error)
	Update(ctx context.Context, w *Workflow) (*Workflow, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Workflow, error)
	List(ctx context.Context, filter ListFilter) ([]*Workflow, error)
}
