package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64
	Title       string
	Artist      string
	Description string
	Year        string
	Price       decimal.Decimal
	ImageRef    string
	ProductType string
	Variants    []Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant is a size of a product mapped to the provider's variant id.
type Variant struct {
	ID        int64
	ProductID int64
	VariantID int64
	Size      string
	Price     decimal.Decimal
}

// VariantBySize returns the variant with the given size, if any.
func (p *Product) VariantBySize(size string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Size == size {
			return v, true
		}
	}
	return Variant{}, false
}

type ListFilter struct {
	ProductType string
	Search      string
}
