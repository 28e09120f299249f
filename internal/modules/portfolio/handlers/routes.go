package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers portfolio query routes behind requireAuth
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/portfolio/portfolio", h.HandleGetPortfolio)
		r.Get("/portfolio/valuation", h.HandleGetValuation)
		r.Post("/portfolio/preview", h.HandlePreview)
	})
}
