package cart

import "github.com/shopspring/decimal"

// Line is one entry of a shopping cart. Lines are unique by Key.
type Line struct {
	ProductID   int64           `json:"id"`
	Title       string          `json:"title"`
	Artist      string          `json:"artist"`
	UnitPrice   decimal.Decimal `json:"price"`
	Quantity    int64           `json:"quantity"`
	ImageRef    string          `json:"image"`
	ProductType string          `json:"productType"`
	VariantID   int64           `json:"variantId"`
	Size        string          `json:"size"`
}

type LineKey struct {
	ProductID   int64
	ProductType string
	Size        string
}

func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, ProductType: l.ProductType, Size: l.Size}
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// Snapshot is an ordered copy of a cart's lines. Order is display order only.
type Snapshot []Line

func (s Snapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	return out
}
