package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Service hands out carts and coordinates guest-to-user migration. Carts are
// cached per owner key so concurrent requests for the same owner share one
// serialized Cart.
type Service struct {
	userStore  Store
	guestStore Store
	logger     *slog.Logger

	mu        sync.Mutex
	carts     map[string]*Cart
	migrators map[string]*Migrator
}

// NewService creates a cart service backed by the given user and guest stores.
func NewService(userStore, guestStore Store, logger *slog.Logger) *Service {
	return &Service{
		userStore:  userStore,
		guestStore: guestStore,
		logger:     logger.With("component", "cart_service"),
		carts:      make(map[string]*Cart),
		migrators:  make(map[string]*Migrator),
	}
}

// UserCart returns the signed-in user's cart, loading it on first use.
func (s *Service) UserCart(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	key := userID.String()
	return s.cart(ctx, s.userStore, key, key)
}

// GuestCart returns the cart for an anonymous device. The cache key is
// prefixed so a device ID can never collide with a user ID.
func (s *Service) GuestCart(ctx context.Context, deviceID string) (*Cart, error) {
	return s.cart(ctx, s.guestStore, "guest:"+deviceID, deviceID)
}

func (s *Service) cart(ctx context.Context, store Store, cacheKey, storeKey string) (*Cart, error) {
	s.mu.Lock()
	if c, ok := s.carts[cacheKey]; ok {
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	// Load outside the lock; the double check below keeps one Cart per key.
	loaded, err := Load(ctx, store, storeKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[cacheKey]; ok {
		return c, nil
	}
	s.carts[cacheKey] = loaded
	return loaded, nil
}

// Migrate merges the device's guest cart into the user's cart. One migration
// runs per sign-in session; repeated calls while it is pending or after it
// completed are no-ops, and a failed attempt may be retried.
func (s *Service) Migrate(ctx context.Context, userID uuid.UUID, deviceID string) (MigrationState, error) {
	m := s.migrator(userID, deviceID)

	state, err := m.Prepare(ctx, deviceID)
	if err != nil {
		return state, err
	}
	if state != StatePending {
		return state, nil
	}

	userCart, err := s.UserCart(ctx, userID)
	if err != nil {
		return m.State(), err
	}
	if err := m.Run(ctx, deviceID, userCart); err != nil {
		return m.State(), err
	}

	// The guest cart was consumed; drop the cached copy so a later guest
	// session starts from the store.
	s.mu.Lock()
	delete(s.carts, "guest:"+deviceID)
	s.mu.Unlock()
	return m.State(), nil
}

// MigrationStatus reports the state of the current sign-in session's migration.
func (s *Service) MigrationStatus(userID uuid.UUID, deviceID string) MigrationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.migrators[migratorKey(userID, deviceID)]
	if !ok {
		return StateIdle
	}
	return m.State()
}

// SignOut ends the user's session on the device: the migration slot resets so
// the next sign-in gets a fresh one, and the cached user cart is dropped.
func (s *Service) SignOut(userID uuid.UUID, deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.migrators, migratorKey(userID, deviceID))
	delete(s.carts, userID.String())
}

func (s *Service) migrator(userID uuid.UUID, deviceID string) *Migrator {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := migratorKey(userID, deviceID)
	m, ok := s.migrators[key]
	if !ok {
		m = NewMigrator(s.guestStore, s.logger)
		s.migrators[key] = m
	}
	return m
}

func migratorKey(userID uuid.UUID, deviceID string) string {
	return userID.String() + "|" + deviceID
}
