package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDHeader carries the verified user id when a gateway terminates authentication
const UserIDHeader = "X-User-ID"

// TokenValidator turns a bearer token into a user id
type TokenValidator interface {
	TokensEnabled() bool
	ValidateJWT(token string) (string, error)
}

// AuthMiddleware resolves the caller's user id. With a signing secret configured it
// requires a bearer token; otherwise it trusts the X-User-ID header.
func AuthMiddleware(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string

			if tokens.TokensEnabled() {
				authHeader := r.Header.Get("Authorization")
				if authHeader == "" {
					respondError(w, "Authorization header required", http.StatusUnauthorized)
					return
				}

				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
					return
				}

				id, err := tokens.ValidateJWT(parts[1])
				if err != nil {
					log.Debug().Err(err).Msg("Rejected bearer token")
					respondError(w, "Invalid token", http.StatusUnauthorized)
					return
				}
				userID = id
			} else {
				userID = strings.TrimSpace(r.Header.Get(UserIDHeader))
				if userID == "" {
					respondError(w, UserIDHeader+" header required", http.StatusUnauthorized)
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a context carrying userID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
