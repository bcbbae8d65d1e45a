// Package order provides checkout and order history.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order is a placed order. Items carry a snapshot of the product at purchase
// time, so later catalog edits do not rewrite history.
type Order struct {
	ID              uuid.UUID
	Number          string
	UserID          uuid.UUID
	Status          string
	PaymentStatus   string
	TotalPrice      int64
	ShippingAddress ShippingAddress
	Version         int32
	CreatedAt       time.Time
}

// ShippingAddress is the delivery destination captured at checkout. Stored as
// a jsonb document alongside the order header.
type ShippingAddress struct {
	Recipient  string `json:"recipient"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItem is a single purchased line.
type OrderItem struct {
	ID           uuid.UUID
	OrderID      uuid.UUID
	ProductID    uuid.UUID
	ShopID       uuid.UUID
	ProductName  string
	ImageURL     string
	Color        string
	Size         string
	Quantity     int32
	PricePerItem int64
	Price        int64
	CreatedAt    time.Time
}

// CreateOrderParams carries the order header for creation.
type CreateOrderParams struct {
	Number          string
	UserID          uuid.UUID
	Status          string
	PaymentStatus   string
	TotalPrice      int64
	ShippingAddress ShippingAddress
}

// CreateOrderItemParams carries one purchased line for creation.
type CreateOrderItemParams struct {
	ProductID    uuid.UUID
	ShopID       uuid.UUID
	ProductName  string
	ImageURL     string
	Color        string
	Size         string
	Quantity     int32
	PricePerItem int64
	Price        int64
}

// UpdateOrderParams carries a status change with the expected version.
type UpdateOrderParams struct {
	ID      uuid.UUID
	Status  string
	Version int32
}

// OrderStore is an interface for order storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type OrderStore interface {
	// FindByID retrieves an order with its items.
	// Returns ErrOrderNotFound if no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, []OrderItem, error)

	// FindOrdersByUserID returns the user's orders, newest first.
	FindOrdersByUserID(ctx context.Context, userID uuid.UUID, offset, limit int32) ([]Order, error)

	// CreateOrder persists an order header and its items in one transaction.
	CreateOrder(ctx context.Context, params CreateOrderParams, items []CreateOrderItemParams) (*Order, []OrderItem, error)

	// Update changes an order's status.
	// Returns ErrOrderNotFound if no order exists with the given ID;
	// ErrOptimisticLock if the version does not match.
	Update(ctx context.Context, params UpdateOrderParams) (*Order, error)
}
