package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/domain"
)

const assetColumns = `id, ticker, category, name`

// AssetRepository handles asset database operations
type AssetRepository struct {
	db      *sql.DB
	dialect database.Dialect
	log     zerolog.Logger
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(db *sql.DB, dialect database.Dialect, log zerolog.Logger) *AssetRepository {
	return &AssetRepository{
		db:      db,
		dialect: dialect,
		log:     log.With().Str("repo", "asset").Logger(),
	}
}

// Create inserts an asset. The ticker must be unique.
func (r *AssetRepository) Create(ctx context.Context, a NewAsset) (*domain.Asset, error) {
	query := database.Rebind(r.dialect,
		`INSERT INTO assets (ticker, category, name) VALUES (?, ?, ?) RETURNING id`)

	asset := &domain.Asset{Ticker: a.Ticker, Category: a.Category, Name: a.Name}
	if err := r.db.QueryRowContext(ctx, query, a.Ticker, a.Category, a.Name).Scan(&asset.ID); err != nil {
		return nil, fmt.Errorf("failed to create asset %s: %w", a.Ticker, err)
	}

	r.log.Info().Str("ticker", asset.Ticker).Str("category", asset.Category).Msg("Asset created")
	return asset, nil
}

// GetByID returns nil, nil when the asset does not exist
func (r *AssetRepository) GetByID(ctx context.Context, id int64) (*domain.Asset, error) {
	query := database.Rebind(r.dialect, "SELECT "+assetColumns+" FROM assets WHERE id = ?")
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByTicker returns nil, nil when the asset does not exist
func (r *AssetRepository) GetByTicker(ctx context.Context, ticker string) (*domain.Asset, error) {
	query := database.Rebind(r.dialect, "SELECT "+assetColumns+" FROM assets WHERE ticker = ?")
	return r.scanOne(r.db.QueryRowContext(ctx, query, ticker))
}

// List returns all assets ordered by ticker
func (r *AssetRepository) List(ctx context.Context) ([]domain.Asset, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+assetColumns+" FROM assets ORDER BY ticker")
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	assets := make([]domain.Asset, 0)
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Ticker, &a.Category, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}
	return assets, nil
}

// ListHeldTickers returns tickers that appear in at least one transaction
func (r *AssetRepository) ListHeldTickers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT a.ticker
		FROM assets a
		JOIN transactions t ON t.asset_id = a.id
		ORDER BY a.ticker`)
	if err != nil {
		return nil, fmt.Errorf("failed to query held tickers: %w", err)
	}
	defer rows.Close()

	var tickers []string
	for rows.Next() {
		var ticker string
		if err := rows.Scan(&ticker); err != nil {
			return nil, fmt.Errorf("failed to scan ticker: %w", err)
		}
		tickers = append(tickers, ticker)
	}
	return tickers, rows.Err()
}

func (r *AssetRepository) scanOne(row *sql.Row) (*domain.Asset, error) {
	var a domain.Asset
	err := row.Scan(&a.ID, &a.Ticker, &a.Category, &a.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found (not an error)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan asset: %w", err)
	}
	return &a, nil
}
