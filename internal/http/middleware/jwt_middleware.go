package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/doorlab/roomkey-bookings/internal/http/response"
	"github.com/doorlab/roomkey-bookings/pkg/auth"
	"github.com/doorlab/roomkey-bookings/pkg/logger"
)

type contextKey string

const claimsKey contextKey = "claims"

// RequireAuth verifies the Bearer token and stashes the claims. The
// verified subject is trusted unconditionally downstream.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				response.Unauthorized(w, "Access token required")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := auth.Parse(token, secret)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, logger.UserIDKey, claims.Sub)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims, or nil outside
// RequireAuth.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(claimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}
