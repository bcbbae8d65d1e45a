// Package partner handles applications from sellers who want a shop on the
// marketplace.
package partner

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrRequestNotFound = errors.New("partner request not found")

// Request is a pending seller application.
type Request struct {
	ID        uuid.UUID
	ShopName  string
	OwnerName string
	Email     string
	Phone     string
	Message   string
	Status    string
	CreatedAt time.Time
}

// CreateRequestParams carries the fields of a new application.
type CreateRequestParams struct {
	ShopName  string
	OwnerName string
	Email     string
	Phone     string
	Message   string
}

// Store is an interface for partner request storage operations.
type Store interface {
	// Create persists a new application with status "new".
	Create(ctx context.Context, params CreateRequestParams) (*Request, error)

	// FindAll returns applications, newest first.
	FindAll(ctx context.Context, offset, limit int32) ([]Request, error)
}
