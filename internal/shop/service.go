package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ShopResponse represents shop data returned to clients. Credentials are
// never included.
type ShopResponse struct {
	ID           uuid.UUID `json:"id"`
	Slug         string    `json:"slug"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	LogoURL      string    `json:"logo_url"`
	ProductCount int64     `json:"product_count"`
}

// Service defines the business operations for the shop directory.
type Service interface {
	List(ctx context.Context) ([]ShopResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ShopResponse, error)
	GetBySlug(ctx context.Context, slug string) (*ShopResponse, error)
	// VerifyCredentials checks a shop account login/password pair and returns
	// the shop ID on success. Returns ErrInvalidCredentials on mismatch; an
	// unknown login is indistinguishable from a wrong password.
	VerifyCredentials(ctx context.Context, login, password string) (uuid.UUID, error)
}

type shopService struct {
	store Store
}

// NewService creates a new shop service instance with the provided store.
func NewService(store Store) Service {
	return &shopService{store: store}
}

func (s *shopService) List(ctx context.Context) ([]ShopResponse, error) {
	shops, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ShopResponse, 0, len(shops))
	for i := range shops {
		out = append(out, *toDto(&shops[i]))
	}
	return out, nil
}

func (s *shopService) GetByID(ctx context.Context, id uuid.UUID) (*ShopResponse, error) {
	shop, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(shop), nil
}

func (s *shopService) GetBySlug(ctx context.Context, slug string) (*ShopResponse, error) {
	shop, err := s.store.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return toDto(shop), nil
}

func (s *shopService) VerifyCredentials(ctx context.Context, login, password string) (uuid.UUID, error) {
	shop, err := s.store.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrShopNotFound) {
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("failed to load shop account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(shop.PasswordHash), []byte(password)) != nil {
		return uuid.Nil, ErrInvalidCredentials
	}
	return shop.ID, nil
}

func toDto(s *Shop) *ShopResponse {
	return &ShopResponse{
		ID:           s.ID,
		Slug:         s.Slug,
		Name:         s.Name,
		Description:  s.Description,
		LogoURL:      s.LogoURL,
		ProductCount: s.ProductCount,
	}
}
