package order

import "context"

type Repository interface {
	FindCartOrder(ctx context.Context, userID int64) (*Order, error)
	MarkPending(ctx context.Context, id int64, shipping ShippingInfo, fulfillmentOrderID string) error
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
}

type ListFilter struct {
	Status *Status
	UserID *int64
}
