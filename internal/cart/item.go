// Package cart implements the shopping cart: line items, derived totals,
// mutation operations and the guest-to-user migration performed at sign-in.
package cart

import "github.com/google/uuid"

// ProductSnapshot is the copy of a catalog entry held by a cart line. The cart
// owns the snapshot; later catalog edits do not change lines already added.
type ProductSnapshot struct {
	ID        uuid.UUID `json:"id"`
	ShopID    uuid.UUID `json:"shop_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	SalePrice *int64    `json:"sale_price,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
}

// UnitPrice returns the sale price when one is set and undercuts the list
// price, otherwise the list price. Prices are in minor currency units.
func (p ProductSnapshot) UnitPrice() int64 {
	if p.SalePrice != nil && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// Item is one cart line. Its ID identifies the line, not the product; an empty
// Color or Size means the attribute is not applicable for the product.
type Item struct {
	ID       uuid.UUID       `json:"id"`
	Product  ProductSnapshot `json:"product"`
	Quantity int32           `json:"quantity"`
	Color    string          `json:"color"`
	Size     string          `json:"size"`
}

// SameLine reports whether this line and the given product/variant combination
// are the same line. Two items are the same line iff product ID, color and
// size all match.
func (i Item) SameLine(productID uuid.UUID, color, size string) bool {
	return i.Product.ID == productID && i.Color == color && i.Size == size
}
