package cart

import "github.com/google/uuid"

// Aggregations are pure and computed on demand from the item list; nothing is
// cached so derived values can never go stale.

// Total returns the sum of unit price times quantity across all lines.
func Total(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Product.UnitPrice() * int64(it.Quantity)
	}
	return total
}

// Count returns the sum of quantities across all lines, not the number of
// distinct lines.
func Count(items []Item) int32 {
	var count int32
	for _, it := range items {
		count += it.Quantity
	}
	return count
}

// Contains reports whether any variant of the given product is in the list.
func Contains(items []Item, productID uuid.UUID) bool {
	for _, it := range items {
		if it.Product.ID == productID {
			return true
		}
	}
	return false
}

// ContainsVariant reports whether a line with exactly the given product, color
// and size is in the list.
func ContainsVariant(items []Item, productID uuid.UUID, color, size string) bool {
	for _, it := range items {
		if it.SameLine(productID, color, size) {
			return true
		}
	}
	return false
}
