// internal/app/features/account/routes.go
package account

import (
	"github.com/dalemusser/memberhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.HandleSignUp)
	r.Post("/signin", h.HandleSignIn)
	r.Post("/forgot-password", h.HandleForgotPassword)
	r.Get("/reset/{token}", h.HandleVerifyResetToken)
	r.Post("/reset/{token}", h.HandleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/me", h.HandleMe)
		r.Get("/me/services", h.HandleMyServices)
		r.Post("/me/password", h.HandleChangePassword)
	})

	return r
}
