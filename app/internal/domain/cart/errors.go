package cart

import "errors"

var (
	ErrStoreClosed    = errors.New("cart store closed")
	ErrInvalidLine    = errors.New("invalid cart line")
	ErrMissingSession = errors.New("cart session key is required")
)
