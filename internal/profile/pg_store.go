package profile

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

const profileColumns = `user_id, first_name, last_name, phone, avatar_url, updated_at`
const addressColumns = `id, user_id, label, recipient, line1, line2, city, region,
	postal_code, country, is_default, created_at`

func (p *PgStore) FindProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var pr Profile
	err := p.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID).
		Scan(&pr.UserID, &pr.FirstName, &pr.LastName, &pr.Phone, &pr.AvatarURL, &pr.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &pr, nil
}

func (p *PgStore) UpsertProfile(ctx context.Context, params UpsertProfileParams) (*Profile, error) {
	var pr Profile
	err := p.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, first_name, last_name, phone, avatar_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (user_id) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = EXCLUDED.phone,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = now()
		RETURNING `+profileColumns,
		params.UserID, params.FirstName, params.LastName, params.Phone, params.AvatarURL).
		Scan(&pr.UserID, &pr.FirstName, &pr.LastName, &pr.Phone, &pr.AvatarURL, &pr.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return &pr, nil
}

func (p *PgStore) FindAddresses(ctx context.Context, userID uuid.UUID) ([]Address, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find addresses: %w", err)
	}
	defer rows.Close()

	addresses := make([]Address, 0)
	for rows.Next() {
		var a Address
		err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Line1, &a.Line2,
			&a.City, &a.Region, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read addresses: %w", err)
	}
	return addresses, nil
}

func (p *PgStore) CreateAddress(ctx context.Context, params CreateAddressParams) (*Address, error) {
	var a Address
	// The first saved address becomes the default.
	err := p.db.QueryRow(ctx, `
		INSERT INTO addresses (id, user_id, label, recipient, line1, line2, city, region,
			postal_code, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			NOT EXISTS (SELECT 1 FROM addresses WHERE user_id = $2))
		RETURNING `+addressColumns,
		uuid.New(), params.UserID, params.Label, params.Recipient, params.Line1, params.Line2,
		params.City, params.Region, params.PostalCode, params.Country).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Line1, &a.Line2,
			&a.City, &a.Region, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return &a, nil
}

func (p *PgStore) UpdateAddress(ctx context.Context, params UpdateAddressParams) (*Address, error) {
	var a Address
	err := p.db.QueryRow(ctx, `
		UPDATE addresses SET label = $3, recipient = $4, line1 = $5, line2 = $6,
			city = $7, region = $8, postal_code = $9, country = $10
		WHERE id = $1 AND user_id = $2
		RETURNING `+addressColumns,
		params.ID, params.UserID, params.Label, params.Recipient, params.Line1, params.Line2,
		params.City, params.Region, params.PostalCode, params.Country).
		Scan(&a.ID, &a.UserID, &a.Label, &a.Recipient, &a.Line1, &a.Line2,
			&a.City, &a.Region, &a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return &a, nil
}

func (p *PgStore) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAddressNotFound
	}
	return nil
}

func (p *PgStore) SetDefaultAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	// Use transaction so the clear and the set land together.
	return p.withTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = TRUE WHERE id = $1 AND user_id = $2`, addressID, userID)
		if err != nil {
			return fmt.Errorf("failed to set default address: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAddressNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND id <> $2`, userID, addressID)
		if err != nil {
			return fmt.Errorf("failed to clear previous default: %w", err)
		}
		return nil
	})
}

func (p *PgStore) withTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return ErrTransactionBegin
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w: %w", ErrTransactionRollback, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return ErrTransactionCommit
	}
	return nil
}
