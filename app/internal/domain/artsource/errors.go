package artsource

import "errors"

var (
	ErrSourceNotFound = errors.New("art source not found")
	ErrInvalidName    = errors.New("art source name is required")
	ErrInvalidURL     = errors.New("invalid art source url")
	ErrURLExists      = errors.New("art source url already exists")
)
