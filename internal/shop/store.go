// Package shop provides the shop directory and shop account credentials.
package shop

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Shop is a seller storefront. Every shop is reachable by ID and by slug;
// both resolve the same row.
type Shop struct {
	ID           uuid.UUID
	Slug         string
	Name         string
	Description  string
	LogoURL      string
	Login        string
	PasswordHash string
	ProductCount int64
	CreatedAt    time.Time
}

// Store is an interface for shop storage operations.
type Store interface {
	// FindAll returns all shops with their current product counts.
	FindAll(ctx context.Context) ([]Shop, error)

	// FindByID resolves a shop by its unique identifier.
	// Returns ErrShopNotFound if no shop exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)

	// FindBySlug resolves a shop by its URL slug.
	// Returns ErrShopNotFound if no shop exists with the given slug.
	FindBySlug(ctx context.Context, slug string) (*Shop, error)

	// FindByLogin resolves a shop account by its login name, including the
	// password hash. Returns ErrShopNotFound if no account exists.
	FindByLogin(ctx context.Context, login string) (*Shop, error)
}
