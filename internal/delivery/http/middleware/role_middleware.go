package middleware

import (
	"net/http"

	"telemed-clinic-backend/internal/domain/entity"
	"telemed-clinic-backend/pkg/response"
)

// RequireCapability rejects callers whose role does not grant any of the capabilities.
// Must run after AuthMiddleware.Authenticate.
func RequireCapability(capabilities ...entity.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := CurrentUserFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "User information not found")
				return
			}

			allowed := false
			for _, capability := range capabilities {
				if user.Can(capability) {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireMedicalUser is a convenience middleware for clinical endpoints
func RequireMedicalUser(next http.Handler) http.Handler {
	return RequireCapability(entity.CapAccessClinicalRecords)(next)
}

// RequireClinicAdmin is a convenience middleware for administrative endpoints
func RequireClinicAdmin(next http.Handler) http.Handler {
	return RequireCapability(entity.CapAdministerClinic)(next)
}

// RequireStaffManager is a convenience middleware for staff management endpoints
func RequireStaffManager(next http.Handler) http.Handler {
	return RequireCapability(entity.CapManageStaff)(next)
}
