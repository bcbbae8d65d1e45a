package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is an in-memory Store implementation with injectable failures.
type mockStore struct {
	saved      map[string][]Item
	loadErr    error
	replaceErr error
	deleteErr  error
	replaces   int
}

func newMockStore() *mockStore {
	return &mockStore{saved: make(map[string][]Item)}
}

func (m *mockStore) Load(_ context.Context, key string) ([]Item, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	items := make([]Item, len(m.saved[key]))
	copy(items, m.saved[key])
	return items, nil
}

func (m *mockStore) Replace(_ context.Context, key string, items []Item) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaces++
	saved := make([]Item, len(items))
	copy(saved, items)
	m.saved[key] = saved
	return nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.saved, key)
	return nil
}

func testProduct(id uuid.UUID, price int64) ProductSnapshot {
	return ProductSnapshot{ID: id, ShopID: uuid.New(), Name: "test product", Price: price}
}

func Test_Cart_Add_MergesSameLine(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c, err := Load(ctx, store, "device-1")
	require.NoError(t, err)

	productA := testProduct(uuid.New(), 1000)

	require.NoError(t, c.Add(ctx, productA, 1, "red", "M"))
	require.NoError(t, c.Add(ctx, productA, 2, "red", "M"))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int32(3), items[0].Quantity)
	assert.Equal(t, "red", items[0].Color)

	// The persisted list matches the in-memory one.
	assert.Equal(t, items, store.saved["device-1"])
}

func Test_Cart_Add_DistinctVariantsAreDistinctLines(t *testing.T) {
	ctx := context.Background()
	c, err := Load(ctx, newMockStore(), "device-1")
	require.NoError(t, err)

	productA := testProduct(uuid.New(), 1000)

	require.NoError(t, c.Add(ctx, productA, 1, "red", "M"))
	require.NoError(t, c.Add(ctx, productA, 1, "blue", "M"))
	require.NoError(t, c.Add(ctx, productA, 1, "red", "L"))

	items := c.Items()
	require.Len(t, items, 3)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.NotEqual(t, items[1].ID, items[2].ID)
}

func Test_Cart_Add_QuantityBelowOneIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c, err := Load(ctx, store, "device-1")
	require.NoError(t, err)

	require.NoError(t, c.Add(ctx, testProduct(uuid.New(), 1000), 0, "", ""))
	require.NoError(t, c.Add(ctx, testProduct(uuid.New(), 1000), -2, "", ""))

	assert.Empty(t, c.Items())
	assert.Zero(t, store.replaces)
}

func Test_Cart_UpdateQuantity(t *testing.T) {
	ctx := context.Background()
	c, err := Load(ctx, newMockStore(), "device-1")
	require.NoError(t, err)

	productA := testProduct(uuid.New(), 1000)
	require.NoError(t, c.Add(ctx, productA, 2, "", ""))
	lineID := c.Items()[0].ID

	testCases := []struct {
		name     string
		quantity int32
		expected int
	}{
		{name: "positive quantity is set", quantity: 5, expected: 1},
		{name: "zero quantity removes the line", quantity: 0, expected: 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, c.UpdateQuantity(ctx, lineID, tc.quantity))
			assert.Len(t, c.Items(), tc.expected)
		})
	}
}

func Test_Cart_UpdateQuantity_NegativeRemoves(t *testing.T) {
	ctx := context.Background()
	c, err := Load(ctx, newMockStore(), "device-1")
	require.NoError(t, err)

	require.NoError(t, c.Add(ctx, testProduct(uuid.New(), 1000), 2, "", ""))
	lineID := c.Items()[0].ID

	require.NoError(t, c.UpdateQuantity(ctx, lineID, -3))
	assert.Empty(t, c.Items())
}

func Test_Cart_Remove_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c, err := Load(ctx, store, "device-1")
	require.NoError(t, err)

	require.NoError(t, c.Add(ctx, testProduct(uuid.New(), 1000), 1, "", ""))
	lineID := c.Items()[0].ID

	require.NoError(t, c.Remove(ctx, lineID))
	assert.Empty(t, c.Items())

	replacesAfterRemove := store.replaces
	require.NoError(t, c.Remove(ctx, lineID))
	assert.Equal(t, replacesAfterRemove, store.replaces)
}

func Test_Cart_Clear(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c, err := Load(ctx, store, "device-1")
	require.NoError(t, err)

	require.NoError(t, c.Add(ctx, testProduct(uuid.New(), 1000), 2, "", ""))
	require.NoError(t, c.Clear(ctx))

	assert.Empty(t, c.Items())
	assert.Empty(t, store.saved["device-1"])
}

func Test_Cart_PersistenceFailureLeavesMemoryUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	c, err := Load(ctx, store, "device-1")
	require.NoError(t, err)

	productA := testProduct(uuid.New(), 1000)
	require.NoError(t, c.Add(ctx, productA, 2, "", ""))

	store.replaceErr = errors.New("connection reset")

	err = c.Add(ctx, productA, 1, "", "")
	require.ErrorIs(t, err, ErrCartSave)
	// In-memory and persisted state still agree.
	require.Len(t, c.Items(), 1)
	assert.Equal(t, int32(2), c.Items()[0].Quantity)
	assert.Equal(t, c.Items(), store.saved["device-1"])

	// The failed operation can be retried once the store recovers.
	store.replaceErr = nil
	require.NoError(t, c.Add(ctx, productA, 1, "", ""))
	assert.Equal(t, int32(3), c.Items()[0].Quantity)
}

func Test_Cart_TotalAndCount(t *testing.T) {
	ctx := context.Background()
	c, err := Load(ctx, newMockStore(), "device-1")
	require.NoError(t, err)

	productA := testProduct(uuid.New(), 1000)
	productB := testProduct(uuid.New(), 500)
	productB.SalePrice = int64P(300)

	require.NoError(t, c.Add(ctx, productA, 2, "", ""))
	require.NoError(t, c.Add(ctx, productB, 1, "", ""))

	assert.Equal(t, int64(2300), c.Total())
	assert.Equal(t, int32(3), c.Count())
}
