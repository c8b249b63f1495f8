package middleware

import (
	"fmt"
	"net/http"

	"github.com/brightcart/storefront-backend/internal/authz"
	"github.com/brightcart/storefront-backend/internal/http/response"
	"github.com/brightcart/storefront-backend/internal/observability"
)

// RequirePermission gates a route on a (resource, action) grant. Requests
// without a principal get 401; authenticated requests without the grant
// get 403 with the denied pair spelled out.
func RequirePermission(checker *authz.Checker, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !checker.HasPermission(principal.Role, resource, action) {
				observability.RecordAuthzDecision(r.Context(), resource, action, string(principal.Role), "deny")
				response.Error(w, r, http.StatusForbidden, fmt.Sprintf("Permission denied: %s on %s", action, resource))
				return
			}
			observability.RecordAuthzDecision(r.Context(), resource, action, string(principal.Role), "allow")
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole gates a route on minimum role rank.
func RequireRole(required authz.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !authz.HasRoleOrHigher(principal.Role, required) {
				observability.RecordAuthzDecision(r.Context(), "role", string(required), string(principal.Role), "deny")
				response.Error(w, r, http.StatusForbidden, fmt.Sprintf("Role %s or higher required", required))
				return
			}
			observability.RecordAuthzDecision(r.Context(), "role", string(required), string(principal.Role), "allow")
			next.ServeHTTP(w, r)
		})
	}
}
