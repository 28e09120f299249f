// Package handlers provides HTTP handlers for ledger operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/ledger"
	"github.com/aristath/investai/internal/modules/users"
)

const defaultHistoryLimit = 100

// Handler handles ledger HTTP requests
type Handler struct {
	service *ledger.Service
	log     zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(service *ledger.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ledger").Logger(),
	}
}

type transactionResponse struct {
	ID       int64     `json:"id"`
	UserID   int64     `json:"user_id"`
	AssetID  int64     `json:"asset_id"`
	Ticker   string    `json:"ticker,omitempty"`
	Type     string    `json:"type"`
	Quantity float64   `json:"quantity"`
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:       tx.ID,
		UserID:   tx.UserID,
		AssetID:  tx.AssetID,
		Ticker:   tx.Ticker,
		Type:     string(tx.Kind),
		Quantity: tx.Quantity.InexactFloat64(),
		Price:    tx.Price.InexactFloat64(),
		Date:     tx.Date,
	}
}

// HandleCreateAsset handles POST /portfolio/assets
func (h *Handler) HandleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req ledger.NewAsset
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	asset, created, err := h.service.EnsureAsset(r.Context(), req)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAsset) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to create asset")
		h.writeError(w, http.StatusInternalServerError, "Failed to create asset")
		return
	}

	if created {
		h.log.Info().Str("ticker", asset.Ticker).Msg("Asset registered")
	}
	h.writeJSON(w, http.StatusOK, asset)
}

// HandleListAssets handles GET /portfolio/assets
func (h *Handler) HandleListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.service.ListAssets(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list assets")
		h.writeError(w, http.StatusInternalServerError, "Failed to list assets")
		return
	}
	h.writeJSON(w, http.StatusOK, assets)
}

// HandleCreateTransaction handles POST /portfolio/transactions
func (h *Handler) HandleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req ledger.NewTransaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	tx, err := h.service.RecordTransaction(r.Context(), user.ID, req)
	switch {
	case err == nil:
	case errors.Is(err, ledger.ErrInvalidTransaction):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, ledger.ErrAssetNotFound):
		h.writeError(w, http.StatusNotFound, "Asset not found")
		return
	default:
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to record transaction")
		h.writeError(w, http.StatusInternalServerError, "Failed to record transaction")
		return
	}

	h.writeJSON(w, http.StatusOK, toTransactionResponse(*tx))
}

// HandleListTransactions handles GET /portfolio/transactions
func (h *Handler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	limit := defaultHistoryLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 {
			limit = parsedLimit
		}
	}

	history, err := h.service.History(r.Context(), user.ID, limit)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list transactions")
		h.writeError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	out := make([]transactionResponse, 0, len(history))
	for _, tx := range history {
		out = append(out, toTransactionResponse(tx))
	}
	h.writeJSON(w, http.StatusOK, out)
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
