// Package market caches market prices and serves them to valuation and
// analysis.
package market

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

// PriceRepository persists the latest known price per ticker
type PriceRepository struct {
	db      *sql.DB
	dialect database.Dialect
	log     zerolog.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(db *sql.DB, dialect database.Dialect, log zerolog.Logger) *PriceRepository {
	return &PriceRepository{
		db:      db,
		dialect: dialect,
		log:     log.With().Str("repo", "market_data").Logger(),
	}
}

// Get returns the cached quote regardless of age, or nil, nil
func (r *PriceRepository) Get(ctx context.Context, ticker string) (*domain.Quote, error) {
	query := database.Rebind(r.dialect, `
		SELECT ticker, price, source, last_updated
		FROM market_data
		WHERE ticker = ?`)

	var (
		q       domain.Quote
		updated int64
	)
	err := r.db.QueryRowContext(ctx, query, ticker).Scan(&q.Ticker, &q.Price, &q.Source, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found (not an error)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get price for %s: %w", ticker, err)
	}
	q.UpdatedAt = time.Unix(updated, 0).UTC()
	return &q, nil
}

// Upsert stores q as the latest price for its ticker
func (r *PriceRepository) Upsert(ctx context.Context, q domain.Quote) error {
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = time.Now().UTC()
	}

	query := database.Rebind(r.dialect, `
		INSERT INTO market_data (ticker, price, source, last_updated)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (ticker) DO UPDATE SET
			price = excluded.price,
			source = excluded.source,
			last_updated = excluded.last_updated`)

	if _, err := r.db.ExecContext(ctx, query, q.Ticker, q.Price, q.Source, q.UpdatedAt.Unix()); err != nil {
		return fmt.Errorf("failed to store price for %s: %w", q.Ticker, err)
	}
	return nil
}
