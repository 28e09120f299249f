package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers auth routes. requireAuth guards the routes that
// need a logged-in user.
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.HandleSignup)
		r.Post("/access-token", h.HandleAccessToken)

		r.With(requireAuth).Get("/me", h.HandleMe)
	})
}
