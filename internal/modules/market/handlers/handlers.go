// Package handlers provides HTTP handlers for market prices.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/market"
)

// Handler handles market data HTTP requests
type Handler struct {
	prices *market.PriceService
	log    zerolog.Logger
}

// NewHandler creates a new market handler
func NewHandler(prices *market.PriceService, log zerolog.Logger) *Handler {
	return &Handler{
		prices: prices,
		log:    log.With().Str("handler", "market").Logger(),
	}
}

type quoteResponse struct {
	Ticker      string    `json:"ticker"`
	Price       float64   `json:"price"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"last_updated"`
}

func toQuoteResponse(q *domain.Quote) quoteResponse {
	return quoteResponse{
		Ticker:      q.Ticker,
		Price:       q.Price.InexactFloat64(),
		Source:      q.Source,
		LastUpdated: q.UpdatedAt,
	}
}

// HandleGetPrice handles GET /market/prices/{ticker}
func (h *Handler) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	q, err := h.prices.GetQuote(r.Context(), ticker)
	if err != nil {
		if errors.Is(err, domain.ErrPriceUnavailable) {
			h.writeError(w, http.StatusNotFound, "Price not available")
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to get price")
		h.writeError(w, http.StatusInternalServerError, "Failed to get price")
		return
	}

	h.writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

// HandleSetPrice handles PUT /market/prices/{ticker}
func (h *Handler) HandleSetPrice(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	q, err := h.prices.SetManualPrice(r.Context(), ticker, req.Price)
	if err != nil {
		if errors.Is(err, market.ErrInvalidPrice) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to set price")
		h.writeError(w, http.StatusInternalServerError, "Failed to set price")
		return
	}

	h.writeJSON(w, http.StatusOK, toQuoteResponse(q))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"detail": message})
}
