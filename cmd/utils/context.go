package utils

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	RoleKey   contextKey = "role"
)

func GetUserIDFromContext(r *http.Request) (string, error) {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", errors.New("user ID not found in context")
	}
	return userID, nil
}

func GetRoleFromContext(r *http.Request) string {
	role, _ := r.Context().Value(RoleKey).(string)
	return role
}

// WithActor stores an authenticated subject in ctx. Handlers and tests use it the same way.
func WithActor(ctx context.Context, userID, role string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, RoleKey, role)
}

// AuthMiddleware validates the bearer token and stores its subject in the request context.
func AuthMiddleware(tokens *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				RespondWithMessage(w, http.StatusUnauthorized, "No authentication token provided")
				return
			}

			tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
			claims, err := tokens.Parse(tokenString)
			if err != nil {
				RespondWithMessage(w, http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			ctx := WithActor(r.Context(), claims.Subject, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperAdmin rejects tokens that were not issued to a platform administrator.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRoleFromContext(r) != RoleSuperAdmin {
			RespondWithMessage(w, http.StatusForbidden, "Access denied. Super admin only.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
