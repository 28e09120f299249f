package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aristath/investai/internal/domain"
)

var (
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrInvalidSignup      = errors.New("invalid signup")
)

// minPasswordLength is the shortest password accepted at signup
const minPasswordLength = 6

// Signup is the input for account creation
type Signup struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Service implements signup and password login
type Service struct {
	repo     *Repository
	tokens   *TokenIssuer
	hashCost int
	log      zerolog.Logger
}

// NewService creates a new user service
func NewService(repo *Repository, tokens *TokenIssuer, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		log:      log.With().Str("service", "users").Logger(),
	}
}

// Register creates an account with a bcrypt-hashed password
func (s *Service) Register(ctx context.Context, in Signup) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	// Only a bare address is accepted; "Name <addr>" would be stored verbatim
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email", ErrInvalidSignup)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must have at least %d characters", ErrInvalidSignup, minPasswordLength)
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashed := string(hash)

	u := &domain.User{
		Email:          email,
		HashedPassword: &hashed,
		FullName:       strings.TrimSpace(in.FullName),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login checks credentials and returns a signed access token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", err
	}
	// Accounts created without a password cannot log in this way
	if u == nil || u.HashedPassword == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.HashedPassword), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", ErrInactiveUser
	}

	token, err := s.tokens.Issue(u.Email)
	if err != nil {
		return "", err
	}
	s.log.Debug().Int64("user_id", u.ID).Msg("Access token issued")
	return token, nil
}

// Resolve maps a verified token subject back to a user
func (s *Service) Resolve(ctx context.Context, token string) (*domain.User, error) {
	email, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %w", domain.ErrNotFound)
	}
	return u, nil
}
