package artsource

import "time"

// Source is a public-domain collection the sourcing workflow pulls artwork from.
type Source struct {
	ID        int64
	Name      string
	URL       string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ListFilter struct {
	OnlyActive bool
}
