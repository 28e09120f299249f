package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/aristath/investai/internal/domain"
)

// tickerTotals accumulates one ticker's transactions
type tickerTotals struct {
	net     decimal.Decimal // BUY quantities minus SELL quantities
	buyQty  decimal.Decimal
	buyCost decimal.Decimal // sum of BUY quantity * price
}

// Aggregate folds a user's transactions into current positions.
//
// For each ticker the net quantity is the sum of BUY quantities minus the sum
// of SELL quantities, and the average price is the quantity-weighted mean of
// BUY prices only. Sells never move the average. Tickers whose net quantity
// is zero or negative are omitted, and transactions of any other kind are
// ignored.
//
// Aggregate is pure and safe for concurrent use. Arithmetic is exact, so the
// result does not depend on input order; positions are sorted by ticker.
// Empty input yields an empty, non-nil slice.
func Aggregate(transactions []domain.Transaction) []domain.Position {
	totals := make(map[string]*tickerTotals)

	for _, tx := range transactions {
		if !tx.Kind.Valid() {
			continue
		}

		t, ok := totals[tx.Ticker]
		if !ok {
			t = &tickerTotals{}
			totals[tx.Ticker] = t
		}

		switch tx.Kind {
		case domain.KindBuy:
			t.net = t.net.Add(tx.Quantity)
			t.buyQty = t.buyQty.Add(tx.Quantity)
			t.buyCost = t.buyCost.Add(tx.Quantity.Mul(tx.Price))
		case domain.KindSell:
			t.net = t.net.Sub(tx.Quantity)
		}
	}

	positions := make([]domain.Position, 0, len(totals))
	for ticker, t := range totals {
		if !t.net.IsPositive() {
			continue
		}
		positions = append(positions, domain.Position{
			Ticker:       ticker,
			NetQuantity:  t.net,
			AveragePrice: averagePrice(t.buyCost, t.buyQty),
		})
	}

	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Ticker < positions[j].Ticker
	})

	return positions
}

// averagePrice divides total BUY cost by total BUY quantity, returning zero
// when nothing was bought.
func averagePrice(cost, qty decimal.Decimal) decimal.Decimal {
	if qty.IsZero() {
		return decimal.Zero
	}
	return cost.Div(qty)
}
