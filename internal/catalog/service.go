package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProductResponse represents product data returned to clients.
type ProductResponse struct {
	ID          uuid.UUID `json:"id"`
	ShopID      uuid.UUID `json:"shop_id"`
	CategoryID  uuid.UUID `json:"category_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	SalePrice   *int64    `json:"sale_price,omitempty"`
	Images      []string  `json:"images"`
	Colors      []string  `json:"colors"`
	Sizes       []string  `json:"sizes"`
	Stock       int32     `json:"stock"`
	IsNew       bool      `json:"is_new"`
	IsTrending  bool      `json:"is_trending"`
	Rating      float64   `json:"rating"`
	ReviewCount int32     `json:"review_count"`
	Version     int32     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
}

// CategoryResponse represents category data returned to clients.
type CategoryResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	ImageURL string    `json:"image_url"`
}

// DealResponse is the deal of the day: the sale product with the steepest
// discount, with a countdown end time.
type DealResponse struct {
	Product         ProductResponse `json:"product"`
	DiscountPercent int32           `json:"discount_percent"`
	EndsAt          time.Time       `json:"ends_at"`
}

// CreateProductRequest represents the payload for creating a new product.
type CreateProductRequest struct {
	CategoryID  uuid.UUID `json:"category_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Price       int64     `json:"price" validate:"required,gt=0"`
	SalePrice   *int64    `json:"sale_price" validate:"omitempty,gt=0"`
	Images      []string  `json:"images"`
	Colors      []string  `json:"colors"`
	Sizes       []string  `json:"sizes"`
	Stock       int32     `json:"stock" validate:"gte=0"`
	IsNew       bool      `json:"is_new"`
	IsTrending  bool      `json:"is_trending"`
}

// UpdateProductRequest represents the payload for updating an existing product.
type UpdateProductRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Price       int64    `json:"price" validate:"required,gt=0"`
	SalePrice   *int64   `json:"sale_price" validate:"omitempty,gt=0"`
	Images      []string `json:"images"`
	Colors      []string `json:"colors"`
	Sizes       []string `json:"sizes"`
	Stock       int32    `json:"stock" validate:"gte=0"`
	IsNew       bool     `json:"is_new"`
	IsTrending  bool     `json:"is_trending"`
	Version     int32    `json:"version" validate:"gte=1"`
}

// Service defines the business operations for the product catalog.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error)
	ListProducts(ctx context.Context, filter ListFilter) ([]ProductResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
	// DealOfTheDay returns the sale product with the highest discount
	// percentage, or nil when nothing is on sale.
	DealOfTheDay(ctx context.Context) (*DealResponse, error)
	// CreateProduct adds a product to the given shop's catalog.
	CreateProduct(ctx context.Context, shopID uuid.UUID, req CreateProductRequest) (*ProductResponse, error)
	// UpdateProduct modifies a product owned by the given shop.
	// Returns ErrAccessDenied when the product belongs to another shop.
	UpdateProduct(ctx context.Context, shopID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error)
	// DeleteProduct removes a product owned by the given shop.
	DeleteProduct(ctx context.Context, shopID, productID uuid.UUID, version int32) error
}

// catalogService implements Service. now is injectable for deal countdown tests.
type catalogService struct {
	store    ProductStore
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a new catalog service instance with the provided store.
func NewService(store ProductStore) Service {
	return &catalogService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

const dealCandidateLimit = 50

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

func (s *catalogService) ListProducts(ctx context.Context, filter ListFilter) ([]ProductResponse, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	products, err := s.store.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *toDto(&products[i]))
	}
	return out, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.store.FindCategories(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{ID: c.ID, Name: c.Name, ImageURL: c.ImageURL})
	}
	return out, nil
}

func (s *catalogService) DealOfTheDay(ctx context.Context) (*DealResponse, error) {
	products, err := s.store.FindOnSale(ctx, dealCandidateLimit)
	if err != nil {
		return nil, err
	}

	var best *Product
	var bestPct int32
	for i := range products {
		pct := discountPercent(&products[i])
		if pct <= 0 {
			continue
		}
		if best == nil || pct > bestPct {
			best = &products[i]
			bestPct = pct
		}
	}
	if best == nil {
		return nil, nil
	}

	// The deal counts down for 24 hours from the moment it is served.
	endsAt := s.now().Add(24 * time.Hour)
	return &DealResponse{Product: *toDto(best), DiscountPercent: bestPct, EndsAt: endsAt}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, shopID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	product, err := s.store.Create(ctx, CreateProductParams{
		ShopID:      shopID,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Images:      req.Images,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		Stock:       req.Stock,
		IsNew:       req.IsNew,
		IsTrending:  req.IsTrending,
	})
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, shopID, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := s.checkOwnership(ctx, shopID, productID); err != nil {
		return nil, err
	}
	product, err := s.store.Update(ctx, UpdateProductParams{
		ID:          productID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Images:      req.Images,
		Colors:      req.Colors,
		Sizes:       req.Sizes,
		Stock:       req.Stock,
		IsNew:       req.IsNew,
		IsTrending:  req.IsTrending,
		Version:     req.Version,
	})
	if err != nil {
		return nil, err
	}
	return toDto(product), nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, shopID, productID uuid.UUID, version int32) error {
	if err := s.checkOwnership(ctx, shopID, productID); err != nil {
		return err
	}
	return s.store.DeleteByID(ctx, productID, version)
}

func (s *catalogService) checkOwnership(ctx context.Context, shopID, productID uuid.UUID) error {
	existing, err := s.store.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if existing.ShopID != shopID {
		return ErrAccessDenied
	}
	return nil
}

// discountPercent returns the discount percentage rounded half-up, or 0 when
// the product has no effective sale price.
func discountPercent(p *Product) int32 {
	if p.SalePrice == nil || p.Price <= 0 || *p.SalePrice >= p.Price {
		return 0
	}
	return int32(((p.Price-*p.SalePrice)*100 + p.Price/2) / p.Price)
}

func toDto(p *Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		ShopID:      p.ShopID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Images:      p.Images,
		Colors:      p.Colors,
		Sizes:       p.Sizes,
		Stock:       p.Stock,
		IsNew:       p.IsNew,
		IsTrending:  p.IsTrending,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
	}
}
