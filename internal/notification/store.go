// Package notification consumes order events and records customer
// notifications.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Notification is one recorded customer notification.
type Notification struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Kind        string
	CreatedAt   time.Time
}

// KindOrderCreated marks the confirmation recorded after checkout.
const KindOrderCreated = "order_created"

// Store is an interface for notification storage operations.
type Store interface {
	// Record persists a notification entry.
	Record(ctx context.Context, n Notification) error
}
