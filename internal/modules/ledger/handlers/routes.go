package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers asset and transaction routes. All of them need
// an authenticated user.
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/portfolio/assets", h.HandleCreateAsset)
		r.Get("/portfolio/assets", h.HandleListAssets)

		r.Post("/portfolio/transactions", h.HandleCreateTransaction)
		r.Get("/portfolio/transactions", h.HandleListTransactions)
	})
}
