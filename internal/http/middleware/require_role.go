package middleware

import (
	"net/http"

	"github.com/snic-labs/policy-api/internal/domain"
	"github.com/snic-labs/policy-api/internal/http/response"
)

// RequireRole admits requests whose verified role claim matches one of
// roles. It must run after Authenticate.
func RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[domain.UserRole]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
		names = append(names, role.String())
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token", nil)
				return
			}
			if _, ok := allowed[domain.UserRole(claims.Role)]; !ok {
				response.Error(w, r, http.StatusForbidden, "FORBIDDEN", "insufficient role", map[string]any{"required": names})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
