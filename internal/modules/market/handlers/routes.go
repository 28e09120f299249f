package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers market data routes
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/market", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/prices/{ticker}", h.HandleGetPrice)
		r.Put("/prices/{ticker}", h.HandleSetPrice)
	})
}
