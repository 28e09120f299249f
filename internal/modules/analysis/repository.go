// Package analysis generates, stores and delivers AI portfolio analyses.
package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/domain"
)

// Repository handles ai_analysis database operations
type Repository struct {
	db      *sql.DB
	dialect database.Dialect
	log     zerolog.Logger
}

// NewRepository creates a new analysis repository
func NewRepository(db *sql.DB, dialect database.Dialect, log zerolog.Logger) *Repository {
	return &Repository{
		db:      db,
		dialect: dialect,
		log:     log.With().Str("repo", "ai_analysis").Logger(),
	}
}

// Create stores a and fills in ID, UUID and CreatedAt
func (r *Repository) Create(ctx context.Context, a *domain.Analysis) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}

	query := database.Rebind(r.dialect, `
		INSERT INTO ai_analysis (uuid, user_id, content, language, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`)

	err := r.db.QueryRowContext(ctx, query, a.UUID, a.UserID, a.Content, string(a.Language), a.CreatedAt.Unix()).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to create analysis: %w", err)
	}

	r.log.Debug().Int64("user_id", a.UserID).Str("uuid", a.UUID).Msg("Analysis stored")
	return nil
}

// ListByUser returns a user's analyses, newest first. limit <= 0 returns all.
func (r *Repository) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Analysis, error) {
	q := `
		SELECT id, uuid, user_id, content, language, created_at
		FROM ai_analysis
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`
	args := []interface{}{userID}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, database.Rebind(r.dialect, q), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Analysis, 0)
	for rows.Next() {
		var (
			a         domain.Analysis
			lang      string
			createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.UUID, &a.UserID, &a.Content, &lang, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		a.Language = domain.Language(lang)
		a.CreatedAt = time.Unix(createdAt, 0).UTC()
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analyses: %w", err)
	}
	return out, nil
}
