// Package domain holds the core types shared across modules. It has no
// infrastructure dependencies.
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the direction of a trade
type TransactionKind string

const (
	KindBuy  TransactionKind = "BUY"
	KindSell TransactionKind = "SELL"
)

// ParseTransactionKind normalizes user input ("buy", " Sell ") to a kind.
// Anything other than BUY or SELL is an error.
func ParseTransactionKind(s string) (TransactionKind, error) {
	k := TransactionKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("unsupported transaction type %q", s)
	}
	return k, nil
}

// Valid reports whether k is BUY or SELL
func (k TransactionKind) Valid() bool {
	return k == KindBuy || k == KindSell
}

// Asset categories used by the client. Category is free text in storage;
// these are the values the prompt and UI know about.
const (
	CategoryBRStocks    = "BR_STOCKS"
	CategoryFIIs        = "FIIS"
	CategoryUSStocks    = "US_STOCKS"
	CategoryCrypto      = "CRYPTO"
	CategoryFixedIncome = "RENDA_FIXA"
	CategoryOther       = "OUTROS"
)

// NormalizeCategory upper-cases a category and maps blanks to CategoryOther
func NormalizeCategory(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return CategoryOther
	}
	return c
}

// Language of generated narrative text
type Language string

const (
	LanguagePT Language = "pt"
	LanguageEN Language = "en"
)

// ParseLanguage returns the language for s, falling back to def for
// empty or unsupported input.
func ParseLanguage(s string, def Language) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguagePT:
		return LanguagePT
	case LanguageEN:
		return LanguageEN
	default:
		return def
	}
}

// User is an account holder
type User struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	HashedPassword *string   `json:"-"`
	FullName       string    `json:"full_name"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Asset is a tradable instrument, shared between users
type Asset struct {
	ID       int64  `json:"id"`
	Ticker   string `json:"ticker"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

// Transaction is an immutable buy or sell record. Ticker and Category are
// denormalized from the asset when read from storage.
type Transaction struct {
	ID       int64
	UserID   int64
	AssetID  int64
	Ticker   string
	Category string
	Kind     TransactionKind
	Quantity decimal.Decimal
	Price    decimal.Decimal
	Date     time.Time
}

// Position is the aggregated holding of one ticker
type Position struct {
	Ticker       string
	NetQuantity  decimal.Decimal
	AveragePrice decimal.Decimal
}

// CostBasis is NetQuantity valued at AveragePrice
func (p Position) CostBasis() decimal.Decimal {
	return p.NetQuantity.Mul(p.AveragePrice)
}

// HoldingValue is the narrative generator's view of a position
type HoldingValue struct {
	Ticker   string
	Category string
	Value    decimal.Decimal
}

// Quote is a cached market price
type Quote struct {
	Ticker    string
	Price     decimal.Decimal
	Source    string
	UpdatedAt time.Time
}

// Analysis is a persisted narrative
type Analysis struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	Language  Language  `json:"language"`
	CreatedAt time.Time `json:"created_at"`
}
