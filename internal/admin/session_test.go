package admin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kutuku/marketplace/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(lifetime time.Duration) *SessionManager {
	return NewSessionManager(config.AdminSessionConfig{
		Secret:   "0123456789abcdef0123456789abcdef",
		Lifetime: lifetime,
	})
}

func TestSessionRoundTrip(t *testing.T) {
	mgr := newManager(time.Hour)
	shopID := uuid.New()

	token, err := mgr.Issue(shopID)
	require.NoError(t, err)

	got, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, shopID, got)
}

func TestSessionExpiry(t *testing.T) {
	mgr := newManager(time.Hour)
	issued := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return issued }

	token, err := mgr.Issue(uuid.New())
	require.NoError(t, err)

	mgr.now = func() time.Time { return issued.Add(30 * time.Minute) }
	_, err = mgr.Verify(token)
	require.NoError(t, err)

	mgr.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	mgr := newManager(time.Hour)
	other := NewSessionManager(config.AdminSessionConfig{
		Secret:   "ffffffffffffffffffffffffffffffff",
		Lifetime: time.Hour,
	})

	token, err := other.Issue(uuid.New())
	require.NoError(t, err)

	_, err = mgr.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionRejectsGarbage(t *testing.T) {
	mgr := newManager(time.Hour)
	_, err := mgr.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
