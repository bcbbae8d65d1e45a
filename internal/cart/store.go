package cart

import "context"

// Store is the persistence boundary for one cart lifecycle. The key is the
// owner of the cart: a user ID for the server-persisted user cart, a device ID
// for the locally-persisted guest cart.
type Store interface {
	// Load returns the persisted item list for key, in insertion order.
	// A key with no persisted cart yields an empty slice, not an error.
	Load(ctx context.Context, key string) ([]Item, error)

	// Replace atomically overwrites the persisted item list for key.
	Replace(ctx context.Context, key string, items []Item) error

	// Delete removes the persisted cart for key. Deleting an absent cart is
	// not an error.
	Delete(ctx context.Context, key string) error
}
