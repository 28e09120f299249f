package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Shared sentinel errors. Modules wrap these with context; callers test with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrPriceUnavailable = errors.New("price unavailable")
)

// TransactionStore returns every transaction recorded for a user, in any order.
// It gives no isolation beyond a single read: a transaction inserted
// concurrently may or may not be included.
type TransactionStore interface {
	ListTransactions(ctx context.Context, userID int64) ([]Transaction, error)
}

// PricingSource resolves the current unit price of a ticker.
// Unknown tickers return an error wrapping ErrPriceUnavailable.
type PricingSource interface {
	GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
}

// NarrativeGenerator turns valued holdings into free text. It never fails:
// when the backing model is unavailable it returns a degraded message.
type NarrativeGenerator interface {
	Generate(ctx context.Context, holdings []HoldingValue, lang Language) string
}

// Notifier delivers a message to a recipient. Delivery is best-effort;
// callers log the error and carry on.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Archiver stores a copy of a generated analysis outside the database.
type Archiver interface {
	Archive(ctx context.Context, analysis Analysis) error
}
