package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Cart owns the in-memory item list for one session (guest or signed-in) and
// keeps it in lockstep with the backing store. Mutations are serialized by a
// mutex, so each operation reads the latest state before writing, and are
// pessimistic: the store must ack before the in-memory list changes. A
// persistence failure is returned to the caller with the in-memory list
// untouched, so the two copies never silently diverge.
type Cart struct {
	mu    sync.Mutex
	key   string
	store Store
	items []Item
}

// Load initializes a cart for the given owner key from its persisted state.
func Load(ctx context.Context, store Store, key string) (*Cart, error) {
	items, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCartLoad, err)
	}
	return &Cart{key: key, store: store, items: items}, nil
}

// Key returns the owner key the cart persists under.
func (c *Cart) Key() string {
	return c.key
}

// Items returns a copy of the current item list.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// Total returns the current cart total in minor currency units.
func (c *Cart) Total() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Total(c.items)
}

// Count returns the current total quantity across all lines.
func (c *Cart) Count() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Count(c.items)
}

// Add merges the product/variant combination into the cart: an existing line
// with the same product, color and size has its quantity incremented,
// otherwise a new line with a fresh line ID is appended. A quantity below 1 is
// a no-op.
func (c *Cart) Add(ctx context.Context, product ProductSnapshot, quantity int32, color, size string) error {
	if quantity < 1 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.snapshot()
	merged := false
	for i := range next {
		if next[i].SameLine(product.ID, color, size) {
			next[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, Item{
			ID:       uuid.New(),
			Product:  product,
			Quantity: quantity,
			Color:    color,
			Size:     size,
		})
	}
	return c.commit(ctx, next)
}

// Remove deletes the line with the given line ID. Removing an absent line is
// idempotent and does not touch the store.
func (c *Cart) Remove(ctx context.Context, lineID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(ctx, lineID)
}

// UpdateQuantity sets the quantity of the line with the given line ID. A
// quantity of zero or below removes the line.
func (c *Cart) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		return c.removeLocked(ctx, lineID)
	}
	next := c.snapshot()
	for i := range next {
		if next[i].ID == lineID {
			next[i].Quantity = quantity
			return c.commit(ctx, next)
		}
	}
	return nil
}

// Clear empties the cart and persists the empty state.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commit(ctx, []Item{})
}

func (c *Cart) removeLocked(ctx context.Context, lineID uuid.UUID) error {
	next := c.snapshot()
	for i := range next {
		if next[i].ID == lineID {
			next = append(next[:i], next[i+1:]...)
			return c.commit(ctx, next)
		}
	}
	return nil
}

// commit persists the candidate list and only then swaps it in. Callers must
// hold c.mu.
func (c *Cart) commit(ctx context.Context, next []Item) error {
	if err := c.store.Replace(ctx, c.key, next); err != nil {
		return fmt.Errorf("%w: %w", ErrCartSave, err)
	}
	c.items = next
	return nil
}

// snapshot returns a mutable copy of the item list. Callers must hold c.mu.
func (c *Cart) snapshot() []Item {
	next := make([]Item, len(c.items))
	copy(next, c.items)
	return next
}
