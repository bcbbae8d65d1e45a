package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// GuestStore persists guest carts in an embedded SQLite file, keyed by device
// ID. The local file is the system of record for the guest lifecycle; entries
// live until the cart is migrated into a user cart at sign-in.
type GuestStore struct {
	db *sql.DB
}

const guestSchemaSQL = `
CREATE TABLE IF NOT EXISTS guest_carts (
	device_id  TEXT PRIMARY KEY,
	items      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// NewGuestStore opens (creating if needed) the guest cart database at path.
func NewGuestStore(path string) (*GuestStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create guest store directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open guest store: %w", err)
	}
	if _, err := db.Exec(guestSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize guest store schema: %w", err)
	}
	return &GuestStore{db: db}, nil
}

// Close closes the underlying database.
func (g *GuestStore) Close() error {
	return g.db.Close()
}

func (g *GuestStore) Load(ctx context.Context, key string) ([]Item, error) {
	var raw string
	err := g.db.QueryRowContext(ctx, `SELECT items FROM guest_carts WHERE device_id = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("guest cart entry is corrupt: %w", err)
	}
	return items, nil
}

func (g *GuestStore) Replace(ctx context.Context, key string, items []Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}
	_, err = g.db.ExecContext(ctx, `
		INSERT INTO guest_carts (device_id, items, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (device_id) DO UPDATE SET items = excluded.items, updated_at = excluded.updated_at`,
		key, string(raw), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save guest cart: %w", err)
	}
	return nil
}

func (g *GuestStore) Delete(ctx context.Context, key string) error {
	if _, err := g.db.ExecContext(ctx, `DELETE FROM guest_carts WHERE device_id = ?`, key); err != nil {
		return fmt.Errorf("failed to delete guest cart: %w", err)
	}
	return nil
}
