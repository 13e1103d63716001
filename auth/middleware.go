package auth

import (
	"context"
	"net/http"
	"slices"

	"github.com/dmitrymomot/subman/handler"
	"github.com/dmitrymomot/subman/pkg/jwt"
	"github.com/dmitrymomot/subman/user"
)

type contextKey struct{}

// currentUserKey stores the authenticated user in the request context.
var currentUserKey = contextKey{}

// NewContext returns a context carrying the authenticated user.
func NewContext(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

// CurrentUser returns the authenticated user placed in the context by
// the Authenticate middleware.
func CurrentUser(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(currentUserKey).(*user.User)
	return u, ok
}

// Authenticate extracts the bearer token, resolves it to a live user
// record, and stores the user in the request context. Requests without
// a valid token get 401.
func (s *Service) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := jwt.BearerToken(r)
		if err != nil {
			handler.Error(w, handler.ErrUnauthorized.WithMessage("missing bearer token"))
			return
		}

		u, err := s.authenticate(r.Context(), token)
		if err != nil {
			handler.Error(w, handler.ErrUnauthorized.WithMessage("invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), u)))
	})
}

// RequireRole gates a route to an explicit set of roles. There is no
// role hierarchy: a superadmin is rejected from an admin-only route
// unless listed.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := CurrentUser(r.Context())
			if !ok {
				handler.Error(w, handler.ErrUnauthorized)
				return
			}
			if !slices.Contains(roles, u.Role) {
				handler.Error(w, handler.ErrForbidden.WithMessage("insufficient permissions"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
