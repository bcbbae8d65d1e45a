package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists user carts in PostgreSQL, one row per cart line. The
// database is the system of record for the signed-in lifecycle.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

const loadCartSQL = `
SELECT id, product_id, shop_id, product_name, price, sale_price, image_url, quantity, color, size
FROM cart_items
WHERE user_id = $1
ORDER BY position`

const insertCartItemSQL = `
INSERT INTO cart_items (id, user_id, product_id, shop_id, product_name, price, sale_price, image_url, quantity, color, size, position)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const deleteCartSQL = `DELETE FROM cart_items WHERE user_id = $1`

func (p *PgStore) Load(ctx context.Context, key string) ([]Item, error) {
	userID, err := uuid.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("invalid cart owner key %q: %w", key, err)
	}

	rows, err := p.db.Query(ctx, loadCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.Product.ID, &it.Product.ShopID, &it.Product.Name,
			&it.Product.Price, &it.Product.SalePrice, &it.Product.ImageURL,
			&it.Quantity, &it.Color, &it.Size); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read cart items: %w", err)
	}
	return items, nil
}

// Replace rewrites the user's cart rows in a single transaction, so readers
// never observe a partially replaced cart.
func (p *PgStore) Replace(ctx context.Context, key string, items []Item) error {
	userID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("invalid cart owner key %q: %w", key, err)
	}

	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteCartSQL, userID); err != nil {
			return fmt.Errorf("failed to clear cart rows: %w", err)
		}
		for i, it := range items {
			if _, err := tx.Exec(ctx, insertCartItemSQL,
				it.ID, userID, it.Product.ID, it.Product.ShopID, it.Product.Name,
				it.Product.Price, it.Product.SalePrice, it.Product.ImageURL,
				it.Quantity, it.Color, it.Size, i); err != nil {
				return fmt.Errorf("failed to insert cart row: %w", err)
			}
		}
		return nil
	})
}

func (p *PgStore) Delete(ctx context.Context, key string) error {
	userID, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("invalid cart owner key %q: %w", key, err)
	}
	if _, err := p.db.Exec(ctx, deleteCartSQL, userID); err != nil {
		return fmt.Errorf("failed to delete cart rows: %w", err)
	}
	return nil
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return ErrTransactionRollback
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ErrTransactionCommit
	}
	return nil
}
