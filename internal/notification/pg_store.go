package notification

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

func (p *PgStore) Record(ctx context.Context, n Notification) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, order_id, order_number, kind)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), n.UserID, n.OrderID, n.OrderNumber, n.Kind)
	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}
	return nil
}
