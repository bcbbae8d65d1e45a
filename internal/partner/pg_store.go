package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
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

const requestColumns = `id, shop_name, owner_name, email, phone, message, status, created_at`

func (p *PgStore) Create(ctx context.Context, params CreateRequestParams) (*Request, error) {
	var r Request
	err := p.db.QueryRow(ctx, `
		INSERT INTO partner_requests (id, shop_name, owner_name, email, phone, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'new')
		RETURNING `+requestColumns,
		uuid.New(), params.ShopName, params.OwnerName, params.Email, params.Phone, params.Message).
		Scan(&r.ID, &r.ShopName, &r.OwnerName, &r.Email, &r.Phone, &r.Message, &r.Status, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create partner request: %w", err)
	}
	return &r, nil
}

func (p *PgStore) FindAll(ctx context.Context, offset, limit int32) ([]Request, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+requestColumns+` FROM partner_requests ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find partner requests: %w", err)
	}
	defer rows.Close()

	requests := make([]Request, 0)
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.ShopName, &r.OwnerName, &r.Email, &r.Phone, &r.Message, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read partner requests: %w", err)
	}
	return requests, nil
}
