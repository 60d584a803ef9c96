package product

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrInvalidProduct     = errors.New("title, artist, image and product type are required")
	ErrInvalidPrice       = errors.New("price must be positive")
	ErrUnknownProductType = errors.New("unknown product type")
	ErrVariantNotFound    = errors.New("product variant not found")
)
