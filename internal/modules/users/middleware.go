package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
)

type contextKey struct{}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, u *domain.User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// UserFromContext returns the user set by Authenticator.Middleware
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(contextKey{}).(*domain.User)
	return u, ok && u != nil
}

// Authenticator resolves bearer tokens to users
type Authenticator struct {
	service *Service
	log     zerolog.Logger
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(service *Service, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		service: service,
		log:     log.With().Str("component", "auth").Logger(),
	}
}

// Middleware rejects requests without a valid bearer token:
//   - no token: 401
//   - token without subject: 401
//   - bad signature or expired: 403
//   - subject with no account: 404
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		u, err := a.service.Resolve(r.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, ErrMissingSubject):
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		case errors.Is(err, ErrInvalidToken):
			writeDetail(w, http.StatusForbidden, "Could not validate credentials")
			return
		case errors.Is(err, domain.ErrNotFound):
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		default:
			a.log.Error().Err(err).Msg("Failed to resolve user")
			writeDetail(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
