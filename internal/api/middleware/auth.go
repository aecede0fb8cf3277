// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/util"
)

type contextKey string

const userIDKey contextKey = "userID"

// TokenAuthenticator resolves a bearer token to an existing user's id.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticator rejects requests without a valid bearer token with 401 and
// otherwise stores the caller's user id in the request context.
func Authenticator(auth TokenAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w, "Not authorized, no token")
				return
			}

			userID, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				if util.IsError(err, util.ErrUnauthorized) {
					logger.DebugContext(r.Context(), "Rejected bearer token", "error", err)
					unauthorized(w, "Not authorized, token failed")
					return
				}
				logger.ErrorContext(r.Context(), "Failed to authenticate request", "error", err)
				writeMessage(w, http.StatusInternalServerError, "Server error")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDKey).(uuid.UUID)
	return userID, ok
}

// bearerToken extracts the token from "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
	writeMessage(w, http.StatusUnauthorized, message)
}

func writeMessage(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
