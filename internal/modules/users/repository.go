// Package users manages accounts, password login and bearer-token authentication.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/domain"
)

const userColumns = `id, email, hashed_password, full_name, is_active, created_at`

// Repository handles user database operations
type Repository struct {
	db      *sql.DB
	dialect database.Dialect
	log     zerolog.Logger
}

// NewRepository creates a new user repository
func NewRepository(db *sql.DB, dialect database.Dialect, log zerolog.Logger) *Repository {
	return &Repository{
		db:      db,
		dialect: dialect,
		log:     log.With().Str("repo", "user").Logger(),
	}
}

// Create inserts an active user and fills in ID and CreatedAt
func (r *Repository) Create(ctx context.Context, u *domain.User) error {
	u.CreatedAt = time.Now().UTC().Truncate(time.Second)
	u.IsActive = true

	query := database.Rebind(r.dialect, `
		INSERT INTO users (email, hashed_password, full_name, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	var hashed sql.NullString
	if u.HashedPassword != nil {
		hashed = sql.NullString{String: *u.HashedPassword, Valid: true}
	}

	if err := r.db.QueryRowContext(ctx, query, u.Email, hashed, u.FullName, u.IsActive, u.CreatedAt.Unix()).Scan(&u.ID); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info().Int64("user_id", u.ID).Msg("User created")
	return nil
}

// GetByEmail returns nil, nil when no user has that email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := database.Rebind(r.dialect, "SELECT "+userColumns+" FROM users WHERE email = ?")
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID returns nil, nil when the user does not exist
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := database.Rebind(r.dialect, "SELECT "+userColumns+" FROM users WHERE id = ?")
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SetActive enables or disables login for a user
func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	query := database.Rebind(r.dialect, "UPDATE users SET is_active = ? WHERE id = ?")
	if _, err := r.db.ExecContext(ctx, query, active, id); err != nil {
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var (
		u         domain.User
		hashed    sql.NullString
		createdAt int64
	)
	err := row.Scan(&u.ID, &u.Email, &hashed, &u.FullName, &u.IsActive, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found (not an error)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if hashed.Valid {
		u.HashedPassword = &hashed.String
	}
	u.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &u, nil
}
