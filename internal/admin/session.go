// Package admin provides the shop dashboard: session tokens issued against
// shop account credentials and management endpoints guarded by them.
package admin

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/pkg/config"
)

// ErrInvalidSession is returned for expired, malformed or forged session
// tokens.
var ErrInvalidSession = errors.New("invalid session")

// SessionManager issues and verifies signed dashboard session tokens. Tokens
// are HS256 JWTs whose subject is the shop ID.
type SessionManager struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewSessionManager creates a session manager from the admin session config.
func NewSessionManager(cfg config.AdminSessionConfig) *SessionManager {
	return &SessionManager{
		secret:   []byte(cfg.Secret),
		lifetime: cfg.Lifetime,
		now:      time.Now,
	}
}

// Issue creates a session token for the given shop.
func (m *SessionManager) Issue(shopID uuid.UUID) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   shopID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and returns the shop ID.
func (m *SessionManager) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, ErrInvalidSession
	}
	shopID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return shopID, nil
}
