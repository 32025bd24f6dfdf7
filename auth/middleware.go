package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

type contextKey string

const (
	SubjectKey contextKey = "subject"
	RolesKey   contextKey = "roles"
)

// RequireRole rejects requests without a valid bearer token carrying role.
// The admin session travels with each request instead of living in process state.
func RequireRole(tokenizer Tokenizer, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || tokenStr == "" {
				http.Error(w, "authorization token is missing", http.StatusUnauthorized)
				return
			}

			claims, err := tokenizer.Validate(tokenStr)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			if !claims.HasRole(role) {
				http.Error(w, "insufficient role", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			ctx = context.WithValue(ctx, RolesKey, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsAdmin reports whether the request context was authorized with the admin role.
func IsAdmin(ctx context.Context) bool {
	roles, _ := ctx.Value(RolesKey).([]string)
	return lo.Contains(roles, RoleAdmin)
}
