package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/domain"
)

// TickerLister lists the tickers that appear in at least one transaction
type TickerLister interface {
	ListHeldTickers(ctx context.Context) ([]string, error)
}

// PriceRefresher fetches and caches a live price
type PriceRefresher interface {
	Refresh(ctx context.Context, ticker string) (*domain.Quote, error)
}

// RefreshPricesJob warms the price cache for every held ticker so that
// valuation and analysis requests rarely wait on Yahoo.
type RefreshPricesJob struct {
	tickers TickerLister
	prices  PriceRefresher
	timeout time.Duration
	log     zerolog.Logger
}

// NewRefreshPricesJob creates a new price refresh job
func NewRefreshPricesJob(tickers TickerLister, prices PriceRefresher, log zerolog.Logger) *RefreshPricesJob {
	return &RefreshPricesJob{
		tickers: tickers,
		prices:  prices,
		timeout: 5 * time.Minute,
		log:     log.With().Str("job", "refresh_prices").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *RefreshPricesJob) Name() string {
	return "refresh_prices"
}

// Run refreshes each ticker in turn. A failing ticker does not stop the
// others; the job reports an error only when every refresh failed.
func (j *RefreshPricesJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	tickers, err := j.tickers.ListHeldTickers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list held tickers: %w", err)
	}
	if len(tickers) == 0 {
		j.log.Debug().Msg("No held tickers")
		return nil
	}

	failed := 0
	for _, t := range tickers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := j.prices.Refresh(ctx, t); err != nil {
			failed++
			j.log.Warn().Err(err).Str("ticker", t).Msg("Failed to refresh price")
		}
	}

	j.log.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Msg("Prices refreshed")

	if failed == len(tickers) {
		return fmt.Errorf("failed to refresh all %d prices", failed)
	}
	return nil
}
