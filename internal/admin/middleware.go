package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey struct{ name string }

var shopIDKey = contextKey{"shop_id"}

// WithShopID returns a context carrying the authenticated shop ID.
func WithShopID(ctx context.Context, shopID uuid.UUID) context.Context {
	return context.WithValue(ctx, shopIDKey, shopID)
}

// ContextShopID returns the shop ID set by the middleware, or uuid.Nil.
func ContextShopID(ctx context.Context) uuid.UUID {
	if v, ok := ctx.Value(shopIDKey).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// Middleware verifies the dashboard session token in the Authorization header
// and adds the shop ID to the request context. Requests with a missing or
// invalid token receive 401 Unauthorized.
func Middleware(sessions *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				http.Error(w, "Bearer token is required", http.StatusUnauthorized)
				return
			}

			shopID, err := sessions.Verify(tokenString)
			if err != nil {
				http.Error(w, "Invalid session", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithShopID(r.Context(), shopID)))
		})
	}
}
