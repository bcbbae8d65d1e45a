package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockProductStore struct {
	products   map[uuid.UUID]*Product
	onSale     []Product
	categories []Category
	findAllErr error
	lastFilter ListFilter
}

func newMockProductStore() *mockProductStore {
	return &mockProductStore{products: make(map[uuid.UUID]*Product)}
}

func (m *mockProductStore) FindByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProductStore) FindAll(_ context.Context, filter ListFilter) ([]Product, error) {
	m.lastFilter = filter
	if m.findAllErr != nil {
		return nil, m.findAllErr
	}
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockProductStore) FindOnSale(_ context.Context, _ int32) ([]Product, error) {
	return m.onSale, nil
}

func (m *mockProductStore) Create(_ context.Context, params CreateProductParams) (*Product, error) {
	p := &Product{
		ID:         uuid.New(),
		ShopID:     params.ShopID,
		CategoryID: params.CategoryID,
		Name:       params.Name,
		Price:      params.Price,
		SalePrice:  params.SalePrice,
		Stock:      params.Stock,
		Version:    1,
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductStore) Update(_ context.Context, params UpdateProductParams) (*Product, error) {
	p, ok := m.products[params.ID]
	if !ok {
		return nil, ErrProductNotFound
	}
	if p.Version != params.Version {
		return nil, ErrOptimisticLock
	}
	p.Name = params.Name
	p.Price = params.Price
	p.SalePrice = params.SalePrice
	p.Stock = params.Stock
	p.Version++
	cp := *p
	return &cp, nil
}

func (m *mockProductStore) DeleteByID(_ context.Context, id uuid.UUID, version int32) error {
	p, ok := m.products[id]
	if !ok || p.Version != version {
		return ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductStore) FindCategories(_ context.Context) ([]Category, error) {
	return m.categories, nil
}

func saleP(price int64, sale int64) Product {
	return Product{ID: uuid.New(), Name: "p", Price: price, SalePrice: &sale}
}

func TestDealOfTheDay(t *testing.T) {
	t.Run("picks the steepest discount", func(t *testing.T) {
		store := newMockProductStore()
		tenOff := saleP(1000, 900)   // 10%
		halfOff := saleP(2000, 1000) // 50%
		store.onSale = []Product{tenOff, halfOff, saleP(500, 400)}

		svc := NewService(store)
		deal, err := svc.DealOfTheDay(context.Background())
		require.NoError(t, err)
		require.NotNil(t, deal)
		assert.Equal(t, halfOff.ID, deal.Product.ID)
		assert.Equal(t, int32(50), deal.DiscountPercent)
	})

	t.Run("nothing on sale returns nil", func(t *testing.T) {
		svc := NewService(newMockProductStore())
		deal, err := svc.DealOfTheDay(context.Background())
		require.NoError(t, err)
		assert.Nil(t, deal)
	})

	t.Run("sale price at or above list is not a deal", func(t *testing.T) {
		store := newMockProductStore()
		store.onSale = []Product{saleP(1000, 1000), saleP(1000, 1200)}
		svc := NewService(store)
		deal, err := svc.DealOfTheDay(context.Background())
		require.NoError(t, err)
		assert.Nil(t, deal)
	})

	t.Run("countdown runs 24 hours from now", func(t *testing.T) {
		store := newMockProductStore()
		store.onSale = []Product{saleP(1000, 500)}
		svc := NewService(store).(*catalogService)
		fixed := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
		svc.now = func() time.Time { return fixed }

		deal, err := svc.DealOfTheDay(context.Background())
		require.NoError(t, err)
		require.NotNil(t, deal)
		assert.Equal(t, fixed.Add(24*time.Hour), deal.EndsAt)
	})
}

func TestDiscountPercent(t *testing.T) {
	tests := []struct {
		name  string
		price int64
		sale  *int64
		want  int32
	}{
		{"no sale price", 1000, nil, 0},
		{"half off", 1000, int64P(500), 50},
		{"rounds half up", 1000, int64P(675), 33},
		{"rounds down below half", 3000, int64P(2001), 33},
		{"typical sale", 4999, int64P(3349), 33},
		{"sale equals list", 1000, int64P(1000), 0},
		{"sale above list", 1000, int64P(1500), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Price: tc.price, SalePrice: tc.sale}
			assert.Equal(t, tc.want, discountPercent(&p))
		})
	}
}

func int64P(v int64) *int64 { return &v }

func TestListProducts_DefaultLimit(t *testing.T) {
	store := newMockProductStore()
	svc := NewService(store)
	_, err := svc.ListProducts(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int32(20), store.lastFilter.Limit)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := NewService(newMockProductStore())
	_, err := svc.CreateProduct(context.Background(), uuid.New(), CreateProductRequest{
		CategoryID: uuid.New(),
		Name:       "Sneaker",
		Price:      0, // invalid
	})
	require.Error(t, err)
}

func TestUpdateProduct_Ownership(t *testing.T) {
	store := newMockProductStore()
	owner := uuid.New()
	svc := NewService(store)
	created, err := svc.CreateProduct(context.Background(), owner, CreateProductRequest{
		CategoryID: uuid.New(),
		Name:       "Sneaker",
		Price:      1000,
	})
	require.NoError(t, err)

	req := UpdateProductRequest{Name: "Sneaker v2", Price: 1200, Version: 1}

	t.Run("other shop is denied", func(t *testing.T) {
		_, err := svc.UpdateProduct(context.Background(), uuid.New(), created.ID, req)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("owner succeeds", func(t *testing.T) {
		updated, err := svc.UpdateProduct(context.Background(), owner, created.ID, req)
		require.NoError(t, err)
		assert.Equal(t, "Sneaker v2", updated.Name)
		assert.Equal(t, int32(2), updated.Version)
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		_, err := svc.UpdateProduct(context.Background(), owner, created.ID, req)
		assert.ErrorIs(t, err, ErrOptimisticLock)
	})
}

func TestDeleteProduct(t *testing.T) {
	store := newMockProductStore()
	owner := uuid.New()
	svc := NewService(store)
	created, err := svc.CreateProduct(context.Background(), owner, CreateProductRequest{
		CategoryID: uuid.New(),
		Name:       "Sneaker",
		Price:      1000,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), uuid.New(), created.ID, 1), ErrAccessDenied)
	require.NoError(t, svc.DeleteProduct(context.Background(), owner, created.ID, 1))
	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), owner, created.ID, 1), ErrProductNotFound)
}
