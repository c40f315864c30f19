// Package rbac provides role-based access control middleware.
package rbac

import (
	"net/http"
	"strings"

	"github.com/shashiranjanraj/bazaar/pkg/middleware"
	"github.com/shashiranjanraj/bazaar/pkg/response"
)

// HasRole allows only callers whose current role is one of roles.
// middleware.Authenticate must run first.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	denied := DeniedMessage(roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := middleware.RoleFromCtx(r)
			if !ok || !allowed[role] {
				response.Forbidden(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DeniedMessage is the 403 text for a gate over roles, e.g.
// "Access restricted to vendors".
func DeniedMessage(roles ...string) string {
	if len(roles) == 1 && roles[0] == "admin" {
		return "Access restricted to admins only"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r + "s"
	}
	return "Access restricted to " + strings.Join(names, " and ")
}
