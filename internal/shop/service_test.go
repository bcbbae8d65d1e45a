package shop

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockStore struct {
	shops []Shop
}

func (m *mockStore) FindAll(_ context.Context) ([]Shop, error) {
	return m.shops, nil
}

func (m *mockStore) FindByID(_ context.Context, id uuid.UUID) (*Shop, error) {
	for i := range m.shops {
		if m.shops[i].ID == id {
			cp := m.shops[i]
			return &cp, nil
		}
	}
	return nil, ErrShopNotFound
}

func (m *mockStore) FindBySlug(_ context.Context, slug string) (*Shop, error) {
	for i := range m.shops {
		if m.shops[i].Slug == slug {
			cp := m.shops[i]
			return &cp, nil
		}
	}
	return nil, ErrShopNotFound
}

func (m *mockStore) FindByLogin(_ context.Context, login string) (*Shop, error) {
	for i := range m.shops {
		if m.shops[i].Login == login {
			cp := m.shops[i]
			return &cp, nil
		}
	}
	return nil, ErrShopNotFound
}

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestGetByIDAndSlugResolveSameShop(t *testing.T) {
	s := Shop{ID: uuid.New(), Slug: "north-outfitters", Name: "North Outfitters", ProductCount: 7}
	svc := NewService(&mockStore{shops: []Shop{s}})

	byID, err := svc.GetByID(context.Background(), s.ID)
	require.NoError(t, err)
	bySlug, err := svc.GetBySlug(context.Background(), s.Slug)
	require.NoError(t, err)

	assert.Equal(t, byID, bySlug)
	assert.Equal(t, int64(7), byID.ProductCount)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewService(&mockStore{})
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrShopNotFound)
}

func TestListHidesCredentials(t *testing.T) {
	store := &mockStore{shops: []Shop{
		{ID: uuid.New(), Slug: "a", Name: "A", Login: "a@shops.test", PasswordHash: "secret"},
	}}
	svc := NewService(store)
	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	// ShopResponse has no credential fields at all; spot-check the mapping.
	assert.Equal(t, "a", list[0].Slug)
}

func TestVerifyCredentials(t *testing.T) {
	s := Shop{
		ID:           uuid.New(),
		Slug:         "north-outfitters",
		Login:        "owner@north.test",
		PasswordHash: hash(t, "opensesame"),
	}
	svc := NewService(&mockStore{shops: []Shop{s}})

	t.Run("valid pair returns shop ID", func(t *testing.T) {
		id, err := svc.VerifyCredentials(context.Background(), "owner@north.test", "opensesame")
		require.NoError(t, err)
		assert.Equal(t, s.ID, id)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.VerifyCredentials(context.Background(), "owner@north.test", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown login yields the same error", func(t *testing.T) {
		_, err := svc.VerifyCredentials(context.Background(), "ghost@north.test", "opensesame")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

// The shop account used for the admin login and the shop shown in public
// browsing must be the same entity.
func TestLoginAndBrowsingResolveSameEntity(t *testing.T) {
	s := Shop{
		ID:           uuid.New(),
		Slug:         "north-outfitters",
		Name:         "North Outfitters",
		Login:        "owner@north.test",
		PasswordHash: hash(t, "opensesame"),
	}
	svc := NewService(&mockStore{shops: []Shop{s}})

	id, err := svc.VerifyCredentials(context.Background(), "owner@north.test", "opensesame")
	require.NoError(t, err)

	browsed, err := svc.GetBySlug(context.Background(), "north-outfitters")
	require.NoError(t, err)
	assert.Equal(t, browsed.ID, id)
}
