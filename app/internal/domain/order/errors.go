package order

import "errors"

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStatus          = errors.New("invalid order status")
	ErrInvalidTransition      = errors.New("order status transition not allowed")
	ErrEmptyOrderItems        = errors.New("no items to checkout")
	ErrAuthenticationRequired = errors.New("authentication required")
	ErrCheckoutFailed         = errors.New("checkout failed")
)
