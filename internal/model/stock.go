package model

// StockItem is a stocked consumable or reusable instrument.
type StockItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity Count  `json:"quantity"`
	Location string `json:"location"`
	MinLevel Count  `json:"minLevel"`
	Status   string `json:"status"`
}

// Stock categories.
const (
	CategoryReusable    = "Reusable"
	CategoryNonReusable = "Non-Reusable"
)

// Stock statuses.
const (
	StockStatusInStock  = "In Stock"
	StockStatusLowStock = "Low Stock"
)

// StockStatus derives the stock status from the quantity on hand and the
// minimum level. Stock at exactly the minimum level is low.
func StockStatus(quantity, minLevel int) string {
	if quantity > minLevel {
		return StockStatusInStock
	}
	return StockStatusLowStock
}

// ValidCategory reports whether c is a known stock category.
func ValidCategory(c string) bool {
	return c == CategoryReusable || c == CategoryNonReusable
}
