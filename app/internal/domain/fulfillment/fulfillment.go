package fulfillment

import "github.com/shopspring/decimal"

// OrderItem references a synced provider variant.
type OrderItem struct {
	SyncVariantID int64 `json:"sync_variant_id"`
	Quantity      int64 `json:"quantity"`
}

type Recipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
}

type OrderRequest struct {
	ExternalID string      `json:"external_id,omitempty"`
	Recipient  Recipient   `json:"recipient"`
	Items      []OrderItem `json:"items"`
}

type RetailCosts struct {
	Total string `json:"total"`
}

type Order struct {
	ID          int64       `json:"id"`
	ExternalID  string      `json:"external_id"`
	Status      string      `json:"status"`
	Shipping    string      `json:"shipping"`
	RetailCosts RetailCosts `json:"retail_costs"`
	Recipient   Recipient   `json:"recipient"`
}

type File struct {
	URL          string `json:"url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	PreviewURL   string `json:"preview_url,omitempty"`
}

type SyncProduct struct {
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
}

type SyncVariant struct {
	RetailPrice decimal.Decimal `json:"retail_price"`
	VariantID   int64           `json:"variant_id"`
	Files       []File          `json:"files"`
}

type ProductRequest struct {
	SyncProduct  SyncProduct   `json:"sync_product"`
	SyncVariants []SyncVariant `json:"sync_variants"`
}

type Variant struct {
	ID          int64  `json:"id"`
	ExternalID  string `json:"external_id"`
	VariantID   int64  `json:"variant_id"`
	Name        string `json:"name"`
	RetailPrice string `json:"retail_price"`
	Files       []File `json:"files"`
}

type Product struct {
	ID           int64     `json:"id"`
	ExternalID   string    `json:"external_id"`
	Name         string    `json:"name"`
	Variants     []Variant `json:"variants"`
	ThumbnailURL string    `json:"thumbnail_url"`
	IsIgnored    bool      `json:"is_ignored"`
}
