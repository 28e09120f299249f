// Package ledger records assets and the buy/sell transactions made against them.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/aristath/investai/internal/domain"
)

var (
	// ErrAssetNotFound is returned when a transaction references an unknown asset
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidTransaction wraps every validation failure at the ingestion boundary
	ErrInvalidTransaction = errors.New("invalid transaction")
	// ErrInvalidAsset wraps asset validation failures
	ErrInvalidAsset = errors.New("invalid asset")
)

// NewAsset is the input for registering an asset
type NewAsset struct {
	Ticker   string `json:"ticker"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Normalize upper-cases the ticker and category and trims the name
func (a NewAsset) Normalize() NewAsset {
	return NewAsset{
		Ticker:   strings.ToUpper(strings.TrimSpace(a.Ticker)),
		Category: domain.NormalizeCategory(a.Category),
		Name:     strings.TrimSpace(a.Name),
	}
}

// Validate checks a normalized asset
func (a NewAsset) Validate() error {
	if a.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidAsset)
	}
	if len(a.Ticker) > 32 {
		return fmt.Errorf("%w: ticker is too long", ErrInvalidAsset)
	}
	return nil
}

// NewTransaction is the input for recording a trade
type NewTransaction struct {
	AssetID  int64           `json:"asset_id"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     *time.Time      `json:"date,omitempty"`
}

// Validate rejects anything the aggregator would otherwise have to ignore:
// unknown kinds and non-positive amounts.
func (t NewTransaction) Validate() (domain.TransactionKind, error) {
	if t.AssetID <= 0 {
		return "", fmt.Errorf("%w: asset_id is required", ErrInvalidTransaction)
	}
	kind, err := domain.ParseTransactionKind(t.Type)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	if !t.Quantity.IsPositive() {
		return "", fmt.Errorf("%w: quantity must be positive", ErrInvalidTransaction)
	}
	if !t.Price.IsPositive() {
		return "", fmt.Errorf("%w: price must be positive", ErrInvalidTransaction)
	}
	return kind, nil
}
