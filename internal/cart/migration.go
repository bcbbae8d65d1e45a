package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// MigrationState tracks the guest-to-user merge through its lifecycle. Failed
// is not terminal: the guest cart entry is kept and the merge is retried on a
// future sign-in.
type MigrationState int

const (
	StateIdle MigrationState = iota
	StatePending
	StateMigrating
	StateDone
	StateFailed
)

func (s MigrationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateMigrating:
		return "migrating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Migrator merges a pending guest cart into the signed-in user's cart exactly
// once per sign-in session. Repeated triggers while a merge is in flight or
// already finished are no-ops.
type Migrator struct {
	mu     sync.Mutex
	state  MigrationState
	guest  Store
	logger *slog.Logger
}

func NewMigrator(guest Store, logger *slog.Logger) *Migrator {
	return &Migrator{
		guest:  guest,
		logger: logger.With("component", "cart_migrator"),
	}
}

// State returns the current migration state.
func (m *Migrator) State() MigrationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns the migrator to idle. Called on sign-out so the next sign-in
// session gets its own at-most-once migration.
func (m *Migrator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateIdle
}

// Prepare inspects the guest cart for the device at sign-in and moves the
// migrator to pending when a non-empty guest cart exists. An unreadable guest
// entry is discarded rather than blocking future migrations.
func (m *Migrator) Prepare(ctx context.Context, deviceID string) (MigrationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle && m.state != StateFailed {
		return m.state, nil
	}

	items, err := m.guest.Load(ctx, deviceID)
	if err != nil {
		m.logger.WarnContext(ctx, "Discarding unreadable guest cart", "device_id", deviceID, "error", err)
		if delErr := m.guest.Delete(ctx, deviceID); delErr != nil {
			return m.state, fmt.Errorf("%w: %w", ErrCartDelete, delErr)
		}
		m.state = StateIdle
		return m.state, nil
	}
	if len(items) == 0 {
		m.state = StateIdle
		return m.state, nil
	}
	m.state = StatePending
	return m.state, nil
}

// Run merges the pending guest cart into userCart. It must be called only
// after the user cart has finished its initial load, so the merge cannot race
// the authenticated load. On success the guest entry is deleted and the state
// becomes done; on any persistence error or context cancellation (sign-out
// mid-merge) the state becomes failed and the guest entry is left intact for a
// retry on the next sign-in.
func (m *Migrator) Run(ctx context.Context, deviceID string, userCart *Cart) error {
	m.mu.Lock()
	if m.state != StatePending {
		// Done, in flight, or nothing to do: duplicate triggers are no-ops.
		m.mu.Unlock()
		return nil
	}
	m.state = StateMigrating
	m.mu.Unlock()

	err := m.merge(ctx, deviceID, userCart)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateFailed
		m.logger.WarnContext(ctx, "Cart migration failed, will retry on next sign-in", "device_id", deviceID, "error", err)
		return err
	}
	m.state = StateDone
	m.logger.InfoContext(ctx, "Guest cart migrated", "device_id", deviceID)
	return nil
}

func (m *Migrator) merge(ctx context.Context, deviceID string, userCart *Cart) error {
	items, err := m.guest.Load(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCartLoad, err)
	}
	for _, it := range items {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrMigrationAborted, ctx.Err())
		}
		// Replaying through Add applies the line-identity invariant, so lines
		// already in the user cart merge quantities instead of duplicating.
		if err := userCart.Add(ctx, it.Product, it.Quantity, it.Color, it.Size); err != nil {
			return err
		}
	}
	if err := m.guest.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("%w: %w", ErrCartDelete, err)
	}
	return nil
}
