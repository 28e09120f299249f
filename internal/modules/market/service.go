package market

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/investai/internal/domain"
)

// Quote sources stored alongside each price
const (
	SourceYahoo  = "yahoo"
	SourceManual = "manual"
)

// ErrInvalidPrice is returned for a manual override that is not positive
var ErrInvalidPrice = errors.New("price must be positive")

// PriceFetcher fetches a live price from an external provider
type PriceFetcher interface {
	FetchPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// PriceService implements domain.PricingSource on top of the market_data
// cache: a fresh cached price wins, otherwise the fetcher is asked and the
// result stored. When the fetch fails a stale cached price is still
// returned. Only with neither does it report domain.ErrPriceUnavailable.
type PriceService struct {
	repo    *PriceRepository
	fetcher PriceFetcher
	ttl     time.Duration
	now     func() time.Time
	log     zerolog.Logger
}

// NewPriceService creates a new price service
func NewPriceService(repo *PriceRepository, fetcher PriceFetcher, ttl time.Duration, log zerolog.Logger) *PriceService {
	return &PriceService{
		repo:    repo,
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		log:     log.With().Str("service", "prices").Logger(),
	}
}

// GetPrice returns the current price for ticker
func (s *PriceService) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	q, err := s.GetQuote(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Price, nil
}

// GetQuote is GetPrice with source and timestamp
func (s *PriceService) GetQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	ticker = normalizeTicker(ticker)

	cached, err := s.repo.Get(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if cached != nil && s.isFresh(cached) {
		s.log.Debug().Str("ticker", ticker).Msg("Cache hit")
		return cached, nil
	}

	q, err := s.Refresh(ctx, ticker)
	if err == nil {
		return q, nil
	}

	if cached != nil {
		s.log.Warn().
			Err(err).
			Str("ticker", ticker).
			Time("last_updated", cached.UpdatedAt).
			Msg("Fetch failed, using stale cached price")
		return cached, nil
	}

	s.log.Warn().Err(err).Str("ticker", ticker).Msg("No price available")
	return nil, fmt.Errorf("%s: %w", ticker, domain.ErrPriceUnavailable)
}

// Refresh fetches a live price and stores it, ignoring the cache
func (s *PriceService) Refresh(ctx context.Context, ticker string) (*domain.Quote, error) {
	ticker = normalizeTicker(ticker)
	if s.fetcher == nil {
		return nil, fmt.Errorf("no price fetcher configured")
	}

	price, err := s.fetcher.FetchPrice(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("fetcher returned non-positive price %s for %s", price, ticker)
	}

	q := domain.Quote{
		Ticker:    ticker,
		Price:     price,
		Source:    SourceYahoo,
		UpdatedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Upsert(ctx, q); err != nil {
		// The live price is still good for this request
		s.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache price")
	}
	return &q, nil
}

// SetManualPrice stores an override that is treated like any fetched price
func (s *PriceService) SetManualPrice(ctx context.Context, ticker string, price decimal.Decimal) (*domain.Quote, error) {
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	q := domain.Quote{
		Ticker:    normalizeTicker(ticker),
		Price:     price,
		Source:    SourceManual,
		UpdatedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := s.repo.Upsert(ctx, q); err != nil {
		return nil, err
	}
	s.log.Info().Str("ticker", q.Ticker).Str("price", price.String()).Msg("Manual price set")
	return &q, nil
}

func (s *PriceService) isFresh(q *domain.Quote) bool {
	return s.now().Sub(q.UpdatedAt) < s.ttl
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}
