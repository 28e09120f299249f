// Package handlers provides HTTP handlers for portfolio queries.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/portfolio"
	"github.com/aristath/investai/internal/modules/users"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

type positionResponse struct {
	Ticker       string  `json:"ticker"`
	NetQuantity  float64 `json:"net_quantity"`
	AveragePrice float64 `json:"average_price"`
}

type valuedPositionResponse struct {
	positionResponse
	Category      string  `json:"category"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	CostBasis     float64 `json:"cost_basis"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
	PriceSource   string  `json:"price_source"`
}

type valuationResponse struct {
	Positions        []valuedPositionResponse `json:"positions"`
	TotalMarketValue float64                  `json:"total_market_value"`
	TotalCostBasis   float64                  `json:"total_cost_basis"`
	UnrealizedPnL    float64                  `json:"unrealized_pnl"`
}

type previewRequest struct {
	Transactions []portfolio.PreviewTrade `json:"transactions"`
}

func toPositionResponses(positions []domain.Position) []positionResponse {
	out := make([]positionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, toPositionResponse(p))
	}
	return out
}

func toPositionResponse(p domain.Position) positionResponse {
	return positionResponse{
		Ticker:       p.Ticker,
		NetQuantity:  p.NetQuantity.InexactFloat64(),
		AveragePrice: p.AveragePrice.InexactFloat64(),
	}
}

// HandleGetPortfolio handles GET /portfolio/portfolio
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	user, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	positions, err := h.service.GetPositions(r.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to get positions")
		h.writeError(w, http.StatusInternalServerError, "Failed to get portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, toPositionResponses(positions))
}

// HandleGetValuation handles GET /portfolio/valuation
func (h *Handler) HandleGetValuation(w http.ResponseWriter, r *http.Request) {
	user, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	valuation, err := h.service.GetValuation(r.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to value portfolio")
		h.writeError(w, http.StatusInternalServerError, "Failed to value portfolio")
		return
	}

	resp := valuationResponse{
		Positions:        make([]valuedPositionResponse, 0, len(valuation.Positions)),
		TotalMarketValue: valuation.TotalMarketValue.InexactFloat64(),
		TotalCostBasis:   valuation.TotalCostBasis.InexactFloat64(),
		UnrealizedPnL:    valuation.UnrealizedPnL().InexactFloat64(),
	}
	for _, vp := range valuation.Positions {
		resp.Positions = append(resp.Positions, valuedPositionResponse{
			positionResponse: toPositionResponse(vp.Position),
			Category:         vp.Category,
			CurrentPrice:     vp.CurrentPrice.InexactFloat64(),
			MarketValue:      vp.MarketValue.InexactFloat64(),
			CostBasis:        vp.CostBasis.InexactFloat64(),
			UnrealizedPnL:    vp.UnrealizedPnL().InexactFloat64(),
			PriceSource:      vp.PriceSource,
		})
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// HandlePreview handles POST /portfolio/preview
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	user, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	positions, err := h.service.Preview(r.Context(), user.ID, req.Transactions)
	if err != nil {
		if errors.Is(err, portfolio.ErrInvalidPreview) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to preview portfolio")
		h.writeError(w, http.StatusInternalServerError, "Failed to preview portfolio")
		return
	}

	h.writeJSON(w, http.StatusOK, toPositionResponses(positions))
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
