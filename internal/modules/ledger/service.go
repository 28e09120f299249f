package ledger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
)

// Service validates and records assets and transactions
type Service struct {
	assets       *AssetRepository
	transactions *TransactionRepository
	log          zerolog.Logger
}

// NewService creates a new ledger service
func NewService(assets *AssetRepository, transactions *TransactionRepository, log zerolog.Logger) *Service {
	return &Service{
		assets:       assets,
		transactions: transactions,
		log:          log.With().Str("service", "ledger").Logger(),
	}
}

// EnsureAsset returns the asset with the given ticker, creating it first if
// needed. The bool is true when the asset was created.
func (s *Service) EnsureAsset(ctx context.Context, in NewAsset) (*domain.Asset, bool, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, false, err
	}
	if in.Name == "" {
		in.Name = in.Ticker
	}

	existing, err := s.assets.GetByTicker(ctx, in.Ticker)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	asset, err := s.assets.Create(ctx, in)
	if err != nil {
		// Lost a race with a concurrent insert of the same ticker
		if again, lookupErr := s.assets.GetByTicker(ctx, in.Ticker); lookupErr == nil && again != nil {
			return again, false, nil
		}
		return nil, false, err
	}
	return asset, true, nil
}

// ListAssets returns every known asset
func (s *Service) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	return s.assets.List(ctx)
}

// RecordTransaction validates and stores a trade for a user
func (s *Service) RecordTransaction(ctx context.Context, userID int64, in NewTransaction) (*domain.Transaction, error) {
	kind, err := in.Validate()
	if err != nil {
		return nil, err
	}

	asset, err := s.assets.GetByID(ctx, in.AssetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: id %d", ErrAssetNotFound, in.AssetID)
	}

	tx := &domain.Transaction{
		UserID:   userID,
		AssetID:  asset.ID,
		Ticker:   asset.Ticker,
		Category: asset.Category,
		Kind:     kind,
		Quantity: in.Quantity,
		Price:    in.Price,
	}
	if in.Date != nil {
		tx.Date = in.Date.UTC()
	}

	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// History returns a user's transactions, newest first
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	return s.transactions.ListHistory(ctx, userID, limit)
}
