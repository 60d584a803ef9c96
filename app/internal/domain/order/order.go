package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusCart       Status = "cart"
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCanceled   Status = "canceled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusCart, StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	default:
		return false
	}
}

// ShippingInfo is passed through to the fulfillment provider as-is.
type ShippingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zip     string `json:"zip"`
}

type Order struct {
	ID                 int64
	UserID             int64
	Status             Status
	Total              decimal.Decimal
	ShippingAddress    *ShippingInfo
	FulfillmentOrderID string
	Items              []OrderItem
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	VariantID int64
	Size      string
	Price     decimal.Decimal
	Quantity  int64
}

// PlacedEvent describes an order handed to the fulfillment provider.
type PlacedEvent struct {
	OrderID            int64           `json:"order_id,omitempty"`
	UserID             int64           `json:"user_id"`
	Email              string          `json:"email,omitempty"`
	FulfillmentOrderID string          `json:"fulfillment_order_id"`
	ExternalID         string          `json:"external_id"`
	Total              decimal.Decimal `json:"total"`
	ItemCount          int             `json:"item_count"`
	Shipping           ShippingInfo    `json:"shipping"`
	PlacedAt           time.Time       `json:"placed_at"`
}
