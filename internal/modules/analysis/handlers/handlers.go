// Package handlers provides HTTP handlers for AI analyses.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/analysis"
	"github.com/aristath/investai/internal/modules/users"
)

const defaultHistoryLimit = 20

// Handler handles analysis HTTP requests
type Handler struct {
	service     *analysis.Service
	defaultLang domain.Language
	log         zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *analysis.Service, defaultLang domain.Language, log zerolog.Logger) *Handler {
	return &Handler{
		service:     service,
		defaultLang: defaultLang,
		log:         log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleGenerate handles POST /analysis/generate?language=pt|en
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	user, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	lang := domain.ParseLanguage(r.URL.Query().Get("language"), h.defaultLang)

	a, err := h.service.Generate(r.Context(), user, lang)
	if err != nil {
		if errors.Is(err, analysis.ErrEmptyPortfolio) {
			h.writeError(w, http.StatusBadRequest, "Portfolio is empty or has no assets.")
			return
		}
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to generate analysis")
		h.writeError(w, http.StatusInternalServerError, "Failed to generate analysis")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"content": a.Content})
}

// HandleList handles GET /analysis
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
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
		h.log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list analyses")
		h.writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	h.writeJSON(w, http.StatusOK, history)
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
