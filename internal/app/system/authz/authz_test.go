// internal/app/system/authz/authz_test.go
package authz_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/dalemusser/memberhub/internal/app/system/authz"
	"github.com/dalemusser/memberhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestAs(role int) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/users", nil)
	u := &models.User{ID: primitive.NewObjectID(), Role: role, Status: models.StatusActive}
	return auth.WithUser(r, u)
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		r       *http.Request
		minRole int
		wantErr error
	}{
		{"anonymous", httptest.NewRequest(http.MethodGet, "/users", nil), models.RoleMember, auth.ErrUnauthenticated},
		{"member below manager", requestAs(models.RoleMember), models.RoleManager, authz.ErrForbidden},
		{"member at member", requestAs(models.RoleMember), models.RoleMember, nil},
		{"manager below admin", requestAs(models.RoleManager), models.RoleAdmin, authz.ErrForbidden},
		{"admin everywhere", requestAs(models.RoleAdmin), models.RoleManager, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := authz.Check(tc.r, tc.minRole)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Check err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRequireRole_IdentityBeforePrivilege(t *testing.T) {
	handler := authz.RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous got %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(models.RoleMember))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("member got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, requestAs(models.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin got %d, want 200", rec.Code)
	}
}

func TestRoleHelpers(t *testing.T) {
	if authz.IsAdmin(requestAs(models.RoleManager)) {
		t.Fatal("manager reported as admin")
	}
	if !authz.IsAdmin(requestAs(models.RoleAdmin)) {
		t.Fatal("admin not reported as admin")
	}
	if !authz.IsManager(requestAs(models.RoleAdmin)) {
		t.Fatal("admin not reported as manager")
	}
	if authz.IsManager(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Fatal("anonymous reported as manager")
	}
}
