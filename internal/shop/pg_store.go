package shop

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
}

// NewPgStore creates a new instance of Store using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{db: dbp}
}

// shopQuery is the single query shape every lookup path goes through, so a
// shop resolved by ID, slug or login is always the same row with the same
// columns.
const shopQuery = `
	SELECT s.id, s.slug, s.name, s.description, s.logo_url, s.login, s.password_hash,
		(SELECT COUNT(*) FROM products p WHERE p.shop_id = s.id) AS product_count,
		s.created_at
	FROM shops s`

func scanShop(row pgx.Row) (*Shop, error) {
	var s Shop
	err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Description, &s.LogoURL, &s.Login,
		&s.PasswordHash, &s.ProductCount, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *PgStore) findOne(ctx context.Context, where string, arg any) (*Shop, error) {
	shop, err := scanShop(p.db.QueryRow(ctx, shopQuery+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to find shop: %w", err)
	}
	return shop, nil
}

func (p *PgStore) FindAll(ctx context.Context) ([]Shop, error) {
	rows, err := p.db.Query(ctx, shopQuery+` ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to find shops: %w", err)
	}
	defer rows.Close()

	shops := make([]Shop, 0)
	for rows.Next() {
		shop, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan shop: %w", err)
		}
		shops = append(shops, *shop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read shops: %w", err)
	}
	return shops, nil
}

func (p *PgStore) FindByID(ctx context.Context, id uuid.UUID) (*Shop, error) {
	return p.findOne(ctx, ` WHERE s.id = $1`, id)
}

func (p *PgStore) FindBySlug(ctx context.Context, slug string) (*Shop, error) {
	return p.findOne(ctx, ` WHERE s.slug = $1`, slug)
}

func (p *PgStore) FindByLogin(ctx context.Context, login string) (*Shop, error) {
	return p.findOne(ctx, ` WHERE s.login = $1`, login)
}
