package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/aristath/investai/internal/domain"
)

// ErrInvalidPreview is returned for hypothetical trades that could never be
// recorded in the ledger.
var ErrInvalidPreview = errors.New("invalid preview transaction")

// Price sources reported in a valuation
const (
	PriceSourceMarket = "market"
	PriceSourceCost   = "cost"
)

// ValuedPosition is a position priced at the current market price, or at
// its average price when no market price is available.
type ValuedPosition struct {
	domain.Position
	Category     string
	CurrentPrice decimal.Decimal
	MarketValue  decimal.Decimal
	CostBasis    decimal.Decimal
	PriceSource  string
}

// UnrealizedPnL is market value minus cost basis
func (v ValuedPosition) UnrealizedPnL() decimal.Decimal {
	return v.MarketValue.Sub(v.CostBasis)
}

// Valuation is the priced view of a user's portfolio
type Valuation struct {
	Positions        []ValuedPosition
	TotalMarketValue decimal.Decimal
	TotalCostBasis   decimal.Decimal
}

// UnrealizedPnL is the portfolio-wide market value minus cost basis
func (v Valuation) UnrealizedPnL() decimal.Decimal {
	return v.TotalMarketValue.Sub(v.TotalCostBasis)
}

// PreviewTrade is a hypothetical trade that is never persisted
type PreviewTrade struct {
	Ticker   string          `json:"ticker"`
	Type     string          `json:"type"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// PortfolioService derives positions and valuations from the transaction
// history. Nothing is cached: every call re-reads the store and re-aggregates.
type PortfolioService struct {
	store  domain.TransactionStore
	prices domain.PricingSource
	log    zerolog.Logger
}

// NewPortfolioService creates a new portfolio service
func NewPortfolioService(store domain.TransactionStore, prices domain.PricingSource, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		store:  store,
		prices: prices,
		log:    log.With().Str("service", "portfolio").Logger(),
	}
}

// GetPositions returns the user's open positions sorted by ticker
func (s *PortfolioService) GetPositions(ctx context.Context, userID int64) ([]domain.Position, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return Aggregate(txs), nil
}

// GetValuation prices every open position. A ticker without a market price
// is valued at cost and reported with PriceSourceCost.
func (s *PortfolioService) GetValuation(ctx context.Context, userID int64) (*Valuation, error) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	categories := categoriesByTicker(txs)
	positions := Aggregate(txs)

	valuation := &Valuation{
		Positions:        make([]ValuedPosition, 0, len(positions)),
		TotalMarketValue: decimal.Zero,
		TotalCostBasis:   decimal.Zero,
	}

	for _, p := range positions {
		vp := ValuedPosition{
			Position:    p,
			Category:    categories[p.Ticker],
			CostBasis:   p.CostBasis(),
			PriceSource: PriceSourceMarket,
		}

		price, err := s.prices.GetPrice(ctx, p.Ticker)
		switch {
		case err == nil:
			vp.CurrentPrice = price
		case errors.Is(err, domain.ErrPriceUnavailable):
			s.log.Warn().Str("ticker", p.Ticker).Msg("No market price, valuing at cost")
			vp.CurrentPrice = p.AveragePrice
			vp.PriceSource = PriceSourceCost
		default:
			return nil, fmt.Errorf("failed to price %s: %w", p.Ticker, err)
		}

		vp.MarketValue = p.NetQuantity.Mul(vp.CurrentPrice)
		valuation.TotalMarketValue = valuation.TotalMarketValue.Add(vp.MarketValue)
		valuation.TotalCostBasis = valuation.TotalCostBasis.Add(vp.CostBasis)
		valuation.Positions = append(valuation.Positions, vp)
	}

	return valuation, nil
}

// HoldingValues returns the narrative generator's view of the portfolio:
// one entry per open position with its category and current value.
func (s *PortfolioService) HoldingValues(ctx context.Context, userID int64) ([]domain.HoldingValue, error) {
	valuation, err := s.GetValuation(ctx, userID)
	if err != nil {
		return nil, err
	}

	holdings := make([]domain.HoldingValue, 0, len(valuation.Positions))
	for _, vp := range valuation.Positions {
		holdings = append(holdings, domain.HoldingValue{
			Ticker:   vp.Ticker,
			Category: vp.Category,
			Value:    vp.MarketValue,
		})
	}
	return holdings, nil
}

// Preview aggregates the stored history together with hypothetical trades
func (s *PortfolioService) Preview(ctx context.Context, userID int64, trades []PreviewTrade) ([]domain.Position, error) {
	hypothetical := make([]domain.Transaction, 0, len(trades))
	for i, t := range trades {
		tx, err := t.toTransaction(userID)
		if err != nil {
			return nil, fmt.Errorf("trade %d: %w", i, err)
		}
		hypothetical = append(hypothetical, tx)
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	all := make([]domain.Transaction, 0, len(txs)+len(hypothetical))
	all = append(all, txs...)
	all = append(all, hypothetical...)
	return Aggregate(all), nil
}

func (t PreviewTrade) toTransaction(userID int64) (domain.Transaction, error) {
	ticker := strings.ToUpper(strings.TrimSpace(t.Ticker))
	if ticker == "" {
		return domain.Transaction{}, fmt.Errorf("%w: ticker is required", ErrInvalidPreview)
	}
	kind, err := domain.ParseTransactionKind(t.Type)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %v", ErrInvalidPreview, err)
	}
	if !t.Quantity.IsPositive() || !t.Price.IsPositive() {
		return domain.Transaction{}, fmt.Errorf("%w: quantity and price must be positive", ErrInvalidPreview)
	}
	return domain.Transaction{
		UserID:   userID,
		Ticker:   ticker,
		Kind:     kind,
		Quantity: t.Quantity,
		Price:    t.Price,
	}, nil
}

func categoriesByTicker(txs []domain.Transaction) map[string]string {
	out := make(map[string]string)
	for _, tx := range txs {
		if tx.Category != "" {
			out[tx.Ticker] = tx.Category
		}
	}
	return out
}
