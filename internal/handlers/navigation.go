package handlers

import (
	"net/http"

	"github.com/reviewfighters/reviewfighters-api/internal/authz"
	"github.com/reviewfighters/reviewfighters-api/internal/navigation"
)

// Navigation returns the sidebar sections for the caller's role.
func Navigation(w http.ResponseWriter, r *http.Request) {
	role, ok := authz.RoleFromRequest(r)
	if !ok {
		writeError(w, http.StatusForbidden, "Missing role")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"role":     role,
		"sections": navigation.For(role),
	})
}
