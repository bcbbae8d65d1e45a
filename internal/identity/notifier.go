package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// AuthState is the sign-in state of a device session.
type AuthState int

const (
	SignedOut AuthState = iota
	SignedIn
)

func (s AuthState) String() string {
	if s == SignedIn {
		return "signed_in"
	}
	return "signed_out"
}

// AuthEvent describes one sign-in or sign-out transition on a device.
type AuthEvent struct {
	State    AuthState
	UserID   uuid.UUID
	DeviceID string
}

// Listener receives auth transitions. Listeners run synchronously on the
// notifying goroutine, so they should be quick or spin off their own work.
type Listener func(ctx context.Context, event AuthEvent)

type subscription struct {
	id       uint64
	listener Listener
}

// Broker fans auth transitions out to subscribers. Listeners are invoked in
// the order they subscribed, and each transition is delivered at most once:
// a repeated sign-in for the same user on the same device is swallowed.
type Broker struct {
	mu       sync.Mutex
	nextID   uint64
	subs     []subscription
	sessions map[string]uuid.UUID
}

// NewBroker creates an empty auth transition broker.
func NewBroker() *Broker {
	return &Broker{sessions: make(map[string]uuid.UUID)}
}

// Subscribe registers a listener and returns a function that removes it.
// Unsubscribing twice is harmless.
func (b *Broker) Subscribe(listener Listener) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, listener: listener})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, sub := range b.subs {
			if sub.id == id {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

// SignedIn records the user's sign-in on a device and notifies subscribers.
// Reporting the same user on the same device again delivers nothing.
func (b *Broker) SignedIn(ctx context.Context, userID uuid.UUID, deviceID string) {
	b.mu.Lock()
	if current, ok := b.sessions[deviceID]; ok && current == userID {
		b.mu.Unlock()
		return
	}
	b.sessions[deviceID] = userID
	listeners := b.listenersLocked()
	b.mu.Unlock()

	deliver(ctx, listeners, AuthEvent{State: SignedIn, UserID: userID, DeviceID: deviceID})
}

// SignedOut records the end of the device's session and notifies subscribers.
// A device with no active session delivers nothing.
func (b *Broker) SignedOut(ctx context.Context, deviceID string) {
	b.mu.Lock()
	userID, ok := b.sessions[deviceID]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.sessions, deviceID)
	listeners := b.listenersLocked()
	b.mu.Unlock()

	deliver(ctx, listeners, AuthEvent{State: SignedOut, UserID: userID, DeviceID: deviceID})
}

// listenersLocked snapshots the listeners so delivery happens without the
// lock held; a listener may subscribe or unsubscribe from its callback.
func (b *Broker) listenersLocked() []Listener {
	out := make([]Listener, len(b.subs))
	for i, sub := range b.subs {
		out[i] = sub.listener
	}
	return out
}

func deliver(ctx context.Context, listeners []Listener, event AuthEvent) {
	for _, l := range listeners {
		l(ctx, event)
	}
}
