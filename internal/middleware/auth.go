package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmynk/splitright/internal/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// AdminSubjectKey is the context key for storing the authenticated admin's subject.
const AdminSubjectKey contextKey = "admin_subject"

// GetAdminSubject extracts the admin subject from the context.
// Returns empty string if not found.
func GetAdminSubject(ctx context.Context) string {
	subject, _ := ctx.Value(AdminSubjectKey).(string)
	return subject
}

// RequireAdmin returns a middleware that validates the bearer token in the
// Authorization header and requires the admin role.
func RequireAdmin(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				deny(w, http.StatusUnauthorized, err)
				return
			}

			claims, err := jwtManager.ValidateAdmin(tokenString)
			if errors.Is(err, auth.ErrForbidden) {
				deny(w, http.StatusForbidden, err)
				return
			}
			if err != nil {
				deny(w, http.StatusUnauthorized, err)
				return
			}

			ctx := context.WithValue(r.Context(), AdminSubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses "Bearer <token>".
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingToken
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", auth.ErrInvalidToken
	}
	return parts[1], nil
}

func deny(w http.ResponseWriter, status int, err error) {
	slog.Warn("Admin request denied", "status", status, "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
