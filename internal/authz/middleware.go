package authz

import (
	"net/http"

	"github.com/reviewfighters/reviewfighters-api/internal/models"
	"github.com/reviewfighters/reviewfighters-api/internal/navigation"
)

// RequireRole returns a middleware that admits only requesters holding one of allowed.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromRequest(r)
			if !ok || !models.HasAnyRole(role, allowed...) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRoleHandler applies the role middleware inline when registering routes.
func RequireRoleHandler(next http.Handler, allowed ...models.Role) http.Handler {
	return RequireRole(allowed...)(next)
}

// RequirePage admits requesters whose navigation includes any of
// destinations. Roles without a navigation entry are rejected.
func RequirePage(destinations ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromRequest(r)
			if !ok || !canAccessAny(role, destinations) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func canAccessAny(role models.Role, destinations []string) bool {
	for _, d := range destinations {
		if navigation.CanAccess(role, d) {
			return true
		}
	}
	return false
}
