package http

import (
	"net/http"

	"github.com/trendzone/storefront/internal/service"
	"github.com/trendzone/storefront/pkg/middleware"
)

// requirePermission gates admin routes on a role capability. The acting
// admin is loaded per request so a role change takes effect immediately.
// It must be mounted after the admin auth middleware.
func requirePermission(admins *service.AdminService, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			adminID := middleware.PrincipalIDFromContext(r.Context())

			admin, err := admins.GetAdmin(r.Context(), adminID)
			if err != nil {
				writeAppError(w, r, err)
				return
			}

			if !admin.HasPermission(capability) {
				writeJSON(w, http.StatusForbidden, response{
					Error: &errorResponse{Code: "FORBIDDEN", Message: "insufficient permissions"},
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
