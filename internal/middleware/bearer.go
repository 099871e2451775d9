// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/GophTasks/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// TokenParser verifies a bearer token and returns the user it belongs to.
type TokenParser interface {
	ParseToken(token string) (models.User, error)
}

// BearerAuth is a middleware that enforces bearer-token authentication.
//
// Requests without an "Authorization: Bearer <token>" header, or whose
// token fails verification, are rejected with 401. On success the user is
// stored in the request context, so it can be used downstream as the
// authenticated owner.
func BearerAuth(parser TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				WriteError(w, http.StatusUnauthorized, "authorization required")
				return
			}
			user, err := parser.ParseToken(token)
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the user stored by BearerAuth.
func UserFromContext(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

// WithUser returns a copy of ctx carrying u, as BearerAuth does.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
