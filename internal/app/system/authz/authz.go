// internal/app/system/authz/authz.go
//
// Package authz gates routes by role. Roles are ordinals (member <
// manager < admin), so a gate names the minimum role and everything above
// it passes. Identity is always checked before privilege: an anonymous
// request gets 401, a signed-in request below the bar gets 403.
package authz

import (
	"errors"
	"net/http"

	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/domain/models"
)

// ErrForbidden is returned by Check when the user's role is below the
// required minimum.
var ErrForbidden = errors.New("forbidden")

// Check verifies the request carries a user with at least minRole.
// Returns auth.ErrUnauthenticated for anonymous requests, ErrForbidden
// for signed-in users below the bar, and the user otherwise.
func Check(r *http.Request, minRole int) (*models.User, error) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	if u.Role < minRole {
		return nil, ErrForbidden
	}
	return u, nil
}

// RequireRole is middleware form of Check for route groups.
func RequireRole(minRole int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := Check(r, minRole); err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					writeJSONError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				writeJSONError(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsAdmin reports whether the current request's user is an admin.
func IsAdmin(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Role >= models.RoleAdmin
}

// IsManager reports whether the current request's user is at least a manager.
func IsManager(r *http.Request) bool {
	u, ok := auth.CurrentUser(r)
	return ok && u.Role >= models.RoleManager
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
