// Package catalog provides products, categories and the deal of the day.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the persisted catalog entry. SalePrice is nil when the product
// is not on sale; prices are in minor currency units.
type Product struct {
	ID          uuid.UUID
	ShopID      uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       int64
	SalePrice   *int64
	Images      []string
	Colors      []string
	Sizes       []string
	Stock       int32
	IsNew       bool
	IsTrending  bool
	Rating      float64
	ReviewCount int32
	Version     int32
	CreatedAt   time.Time
}

// Category is a top-level browse grouping.
type Category struct {
	ID        uuid.UUID
	Name      string
	ImageURL  string
	CreatedAt time.Time
}

// ListFilter narrows a product listing. Zero-value fields are ignored.
type ListFilter struct {
	ShopID     uuid.UUID
	CategoryID uuid.UUID
	Offset     int32
	Limit      int32
}

// CreateProductParams carries the fields for a new product.
type CreateProductParams struct {
	ShopID      uuid.UUID
	CategoryID  uuid.UUID
	Name        string
	Description string
	Price       int64
	SalePrice   *int64
	Images      []string
	Colors      []string
	Sizes       []string
	Stock       int32
	IsNew       bool
	IsTrending  bool
}

// UpdateProductParams carries the fields for a product update. Version is the
// expected current version for optimistic concurrency control.
type UpdateProductParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       int64
	SalePrice   *int64
	Images      []string
	Colors      []string
	Sizes       []string
	Stock       int32
	IsNew       bool
	IsTrending  bool
	Version     int32
}

// ProductStore is an interface for catalog storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type ProductStore interface {
	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindAll retrieves products matching the filter with pagination support.
	FindAll(ctx context.Context, filter ListFilter) ([]Product, error)

	// FindOnSale retrieves up to limit products that have a sale price set,
	// highest list price first.
	FindOnSale(ctx context.Context, limit int32) ([]Product, error)

	// Create adds a new product to the catalog.
	Create(ctx context.Context, params CreateProductParams) (*Product, error)

	// Update modifies an existing product.
	// Returns ErrProductNotFound if no product exists with the given ID;
	// ErrOptimisticLock if the version does not match.
	Update(ctx context.Context, params UpdateProductParams) (*Product, error)

	// DeleteByID removes a product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID and version.
	DeleteByID(ctx context.Context, id uuid.UUID, version int32) error

	// FindCategories returns all categories.
	FindCategories(ctx context.Context) ([]Category, error)
}
