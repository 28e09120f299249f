// Package handlers provides HTTP handlers for signup and login.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/users"
)

// Handler handles auth HTTP requests
type Handler struct {
	service *users.Service
	log     zerolog.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service *users.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "auth").Logger(),
	}
}

type userResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	IsActive bool   `json:"is_active"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, IsActive: u.IsActive}
}

// HandleSignup creates an account
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req users.Signup
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid request body")
		return
	}

	u, err := h.service.Register(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrAlreadyExists):
		h.writeError(w, http.StatusBadRequest, "The user with this username already exists in the system.")
		return
	case errors.Is(err, users.ErrInvalidSignup):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	default:
		h.log.Error().Err(err).Msg("Signup failed")
		h.writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.writeJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleAccessToken exchanges form credentials (username, password) for a bearer token
func (h *Handler) HandleAccessToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, "Invalid form body")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.writeError(w, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	token, err := h.service.Login(r.Context(), username, password)
	switch {
	case err == nil:
	case errors.Is(err, users.ErrInvalidCredentials):
		h.writeError(w, http.StatusBadRequest, "Incorrect email or password")
		return
	case errors.Is(err, users.ErrInactiveUser):
		h.writeError(w, http.StatusBadRequest, "Inactive user")
		return
	default:
		h.log.Error().Err(err).Msg("Login failed")
		h.writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// HandleMe returns the authenticated user
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := users.UserFromContext(r.Context())
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	h.writeJSON(w, http.StatusOK, toUserResponse(u))
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
