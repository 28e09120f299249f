// Package yahoo fetches current market prices through go-yfinance.
package yahoo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// ErrNoPrice is returned when Yahoo answers but carries no usable price
var ErrNoPrice = errors.New("no valid price in quote")

// B3 tickers: four letters followed by a share-class number (PETR4, MXRF11, BOVA11)
var b3Pattern = regexp.MustCompile(`^[A-Z]{4}[0-9]{1,2}$`)

// Client fetches quotes from Yahoo Finance
type Client struct {
	maxRetries int
	backoff    time.Duration
	log        zerolog.Logger
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		maxRetries: 3,
		backoff:    time.Second,
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

// Symbol converts a ledger ticker to a Yahoo symbol.
// B3 tickers get the .SA suffix; anything with an explicit suffix or a
// pair separator (BTC-USD) passes through unchanged.
func Symbol(ticker string) string {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if b3Pattern.MatchString(t) {
		return t + ".SA"
	}
	return t
}

// FetchPrice returns the latest price for a ticker, retrying with
// exponential backoff.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	yahooSymbol := Symbol(symbol)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff * time.Duration(1<<uint(attempt-1))
			c.log.Warn().Err(lastErr).Str("symbol", yahooSymbol).Int("attempt", attempt).Dur("wait", wait).Msg("Retrying")
			select {
			case <-ctx.Done():
				return decimal.Zero, ctx.Err()
			case <-time.After(wait):
			}
		}

		price, err := c.fetchOnce(yahooSymbol)
		if err == nil {
			c.log.Debug().Str("symbol", yahooSymbol).Float64("price", price).Msg("Fetched price")
			return decimal.NewFromFloat(price), nil
		}
		lastErr = err
	}

	return decimal.Zero, fmt.Errorf("failed to get price for %s after %d attempts: %w", yahooSymbol, c.maxRetries, lastErr)
}

func (c *Client) fetchOnce(symbol string) (float64, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return 0, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	// Quote first, it is the cheaper call
	quote, err := t.Quote()
	if err == nil && quote != nil {
		for _, p := range []float64{quote.RegularMarketPrice, quote.PreMarketPrice, quote.PostMarketPrice} {
			if p > 0 {
				return p, nil
			}
		}
	}

	info, err := t.Info()
	if err != nil {
		return 0, fmt.Errorf("failed to get info: %w", err)
	}
	if info != nil {
		if info.CurrentPrice > 0 {
			return info.CurrentPrice, nil
		}
		if info.RegularMarketPreviousClose > 0 {
			return info.RegularMarketPreviousClose, nil
		}
	}
	return 0, ErrNoPrice
}
