package auth

import (
	"net/http"

	"ms-station/internal/apperr"
	"ms-station/internal/utils"
)

// SafeMethod reports whether the method never writes.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Allowed is the single rule shared by the bus, trip and facility
// collections: reads for any authenticated identity, writes for staff.
func Allowed(id Identity, method string) bool {
	return SafeMethod(method) || id.Staff
}

// StaffOrReadOnly enforces Allowed for every request on a route group.
// It assumes Middleware already ran; a missing identity is treated as
// unauthenticated.
func StaffOrReadOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			utils.WriteError(w, apperr.NotAuthenticated())
			return
		}
		if !Allowed(id, r.Method) {
			utils.WriteError(w, apperr.Forbidden("staff privileges required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff gates an endpoint to staff regardless of method. Used by
// the bus image upload action, which is stricter than its collection.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			utils.WriteError(w, apperr.NotAuthenticated())
			return
		}
		if !id.Staff {
			utils.WriteError(w, apperr.Forbidden("staff privileges required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
