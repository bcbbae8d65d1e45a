package auth

import (
	"net/http"
	"strings"

	"github.com/kutuku/marketplace/pkg/web"
)

// Middleware verifies the bearer token in the Authorization header and, on
// success, adds the token subject (the user ID) to the request context.
// Requests with a missing or invalid token receive 401 Unauthorized.
func Middleware(verifier Verifier) func(http.Handler) http.Handler {
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

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			subject, ok := token.Subject()
			if !ok {
				http.Error(w, "no claim `sub`", http.StatusUnauthorized)
				return
			}
			ctx := web.WithUserID(r.Context(), subject)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
