package fulfillment

import "github.com/shopspring/decimal"

// DefaultVariantID is the medium canvas, used for unknown type/size pairs.
const DefaultVariantID int64 = 1232

var Sizes = []string{"small", "medium", "large"}

var variantIDs = map[string]map[string]int64{
	"canvas":       {"small": 1231, "medium": 1232, "large": 1233},
	"framed-print": {"small": 2231, "medium": 2232, "large": 2233},
	"poster":       {"small": 3231, "medium": 3232, "large": 3233},
	"t-shirt":      {"small": 4231, "medium": 4232, "large": 4233},
}

// VariantID maps a product type and size to the provider variant id.
// Unknown combinations fall back to DefaultVariantID; an empty size means medium.
func VariantID(productType, size string) int64 {
	if size == "" {
		size = "medium"
	}
	if id, ok := variantIDs[productType][size]; ok {
		return id
	}
	return DefaultVariantID
}

// KnownVariant reports whether the pair is in the table.
func KnownVariant(productType, size string) bool {
	_, ok := variantIDs[productType][size]
	return ok
}

func KnownProductType(productType string) bool {
	_, ok := variantIDs[productType]
	return ok
}

// RetailPrice is the price listed on the provider catalog per product type.
func RetailPrice(productType string) decimal.Decimal {
	switch productType {
	case "canvas":
		return decimal.RequireFromString("89.99")
	case "framed-print":
		return decimal.RequireFromString("99.99")
	case "poster":
		return decimal.RequireFromString("39.99")
	case "t-shirt":
		return decimal.RequireFromString("29.99")
	default:
		return decimal.RequireFromString("49.99")
	}
}
