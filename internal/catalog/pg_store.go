package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements ProductStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of ProductStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const productColumns = `id, shop_id, category_id, name, description, price, sale_price,
	images, colors, sizes, stock, is_new, is_trending, rating, review_count, version, created_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ShopID, &p.CategoryID, &p.Name, &p.Description, &p.Price, &p.SalePrice,
		&p.Images, &p.Colors, &p.Sizes, &p.Stock, &p.IsNew, &p.IsTrending, &p.Rating, &p.ReviewCount,
		&p.Version, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID.
func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := p.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return product, nil
}

// FindAll retrieves products matching the filter with pagination support.
// It returns a slice of products, which may be empty if no products match.
func (p *PgStore) FindAll(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := make([]any, 0, 4)
	if filter.ShopID != uuid.Nil {
		args = append(args, filter.ShopID)
		query += fmt.Sprintf(" AND shop_id = $%d", len(args))
	}
	if filter.CategoryID != uuid.Nil {
		args = append(args, filter.CategoryID)
		query += fmt.Sprintf(" AND category_id = $%d", len(args))
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// FindOnSale retrieves up to limit sale-priced products, highest list price first.
func (p *PgStore) FindOnSale(ctx context.Context, limit int32) ([]Product, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE sale_price IS NOT NULL ORDER BY price DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale products: %w", err)
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

// Create adds a new product to the catalog.
func (p *PgStore) Create(ctx context.Context, params CreateProductParams) (*Product, error) {
	row := p.db.QueryRow(ctx, `
		INSERT INTO products (id, shop_id, category_id, name, description, price, sale_price,
			images, colors, sizes, stock, is_new, is_trending)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+productColumns,
		uuid.New(), params.ShopID, params.CategoryID, params.Name, params.Description,
		params.Price, params.SalePrice, params.Images, params.Colors, params.Sizes,
		params.Stock, params.IsNew, params.IsTrending)
	product, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return product, nil
}

// Update modifies an existing product's details.
// Returns ErrProductNotFound if no product exists with the given ID;
// ErrOptimisticLock if the row exists but the version does not match.
func (p *PgStore) Update(ctx context.Context, params UpdateProductParams) (*Product, error) {
	row := p.db.QueryRow(ctx, `
		UPDATE products
		SET name = $3, description = $4, price = $5, sale_price = $6, images = $7,
			colors = $8, sizes = $9, stock = $10, is_new = $11, is_trending = $12,
			version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING `+productColumns,
		params.ID, params.Version, params.Name, params.Description, params.Price, params.SalePrice,
		params.Images, params.Colors, params.Sizes, params.Stock, params.IsNew, params.IsTrending)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Check if the product exists, or it's an optimistic lock error.
			if _, findErr := p.FindByID(ctx, params.ID); findErr != nil {
				return nil, findErr
			}
			return nil, ErrOptimisticLock
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

// DeleteByID removes a product by its unique identifier.
// Returns ErrProductNotFound if no product exists with the given ID and version.
func (p *PgStore) DeleteByID(ctx context.Context, id uuid.UUID, version int32) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM products WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		return fmt.Errorf("failed to delete product by ID: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

// FindCategories returns all categories, alphabetically.
func (p *PgStore) FindCategories(ctx context.Context) ([]Category, error) {
	rows, err := p.db.Query(ctx, `SELECT id, name, image_url, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to find categories: %w", err)
	}
	defer rows.Close()

	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ImageURL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}
