// internal/app/features/members/routes.go
package members

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/lookup/{membershipID}", h.HandleMembershipLookup)
	r.Get("/{id}", h.HandleGet)
	r.Get("/{id}/profile", h.HandleProfile)
	r.Patch("/{id}", h.HandleUpdate)
	r.Put("/{id}/status", h.HandleSetStatus)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
