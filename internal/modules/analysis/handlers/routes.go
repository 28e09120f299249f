package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers analysis routes behind requireAuth
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/analysis", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", h.HandleList)
		r.Post("/generate", h.HandleGenerate)
	})
}
