package domain

import "github.com/shopspring/decimal"

// LineItem is one product row in a cart, wishlist or order snapshot.
// Wishlist items always carry Quantity 1.
type LineItem struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// FindItem returns the index of the item for productID, or -1.
func FindItem(items []LineItem, productID int64) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// CloneItems returns a copy of items that shares no backing array with it.
// A nil input yields an empty, non-nil slice.
func CloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// ItemCount sums the quantities of items.
func ItemCount(items []LineItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
