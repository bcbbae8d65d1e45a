// Package profile provides shopper profiles and saved delivery addresses.
package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Profile is the shopper-editable part of an account. Identity (email,
// password) lives in the identity provider, not here.
type Profile struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	AvatarURL string
	UpdatedAt time.Time
}

// Address is a saved delivery address. At most one address per user is the
// default.
type Address struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Label      string
	Recipient  string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
	IsDefault  bool
	CreatedAt  time.Time
}

// UpsertProfileParams carries the editable profile fields.
type UpsertProfileParams struct {
	UserID    uuid.UUID
	FirstName string
	LastName  string
	Phone     string
	AvatarURL string
}

// CreateAddressParams carries the fields for a new address.
type CreateAddressParams struct {
	UserID     uuid.UUID
	Label      string
	Recipient  string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// UpdateAddressParams carries the replacement fields for an existing address.
type UpdateAddressParams struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Label      string
	Recipient  string
	Line1      string
	Line2      string
	City       string
	Region     string
	PostalCode string
	Country    string
}

// Store is an interface for profile and address storage operations.
type Store interface {
	// FindProfile retrieves a user's profile.
	// Returns ErrProfileNotFound if the user has never saved one.
	FindProfile(ctx context.Context, userID uuid.UUID) (*Profile, error)

	// UpsertProfile creates or replaces the user's profile.
	UpsertProfile(ctx context.Context, params UpsertProfileParams) (*Profile, error)

	// FindAddresses returns the user's addresses, default first.
	FindAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error)

	// CreateAddress adds an address. The user's first address becomes the
	// default automatically.
	CreateAddress(ctx context.Context, params CreateAddressParams) (*Address, error)

	// UpdateAddress replaces an address's fields. The default flag is left
	// untouched; use SetDefaultAddress for that.
	// Returns ErrAddressNotFound if it does not exist or belongs to someone else.
	UpdateAddress(ctx context.Context, params UpdateAddressParams) (*Address, error)

	// DeleteAddress removes a user's address.
	// Returns ErrAddressNotFound if it does not exist or belongs to someone else.
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error

	// SetDefaultAddress makes the given address the user's only default.
	// Returns ErrAddressNotFound if it does not exist or belongs to someone else.
	SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error
}
