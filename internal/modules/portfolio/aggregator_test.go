package portfolio

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(ticker string, kind domain.TransactionKind, qty, price string) domain.Transaction {
	return domain.Transaction{
		Ticker:   ticker,
		Kind:     kind,
		Quantity: d(qty),
		Price:    d(price),
	}
}

func buy(ticker, qty, price string) domain.Transaction {
	return tx(ticker, domain.KindBuy, qty, price)
}

func sell(ticker, qty, price string) domain.Transaction {
	return tx(ticker, domain.KindSell, qty, price)
}

// assertPositions compares positions by decimal value rather than representation
func assertPositions(t *testing.T, want, got []domain.Position) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Ticker, got[i].Ticker)
		assert.True(t, want[i].NetQuantity.Equal(got[i].NetQuantity),
			"%s net_quantity: want %s, got %s", want[i].Ticker, want[i].NetQuantity, got[i].NetQuantity)
		assert.True(t, want[i].AveragePrice.Equal(got[i].AveragePrice),
			"%s average_price: want %s, got %s", want[i].Ticker, want[i].AveragePrice, got[i].AveragePrice)
	}
}

func TestAggregate_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		txs  []domain.Transaction
		want []domain.Position
	}{
		{
			name: "single buy",
			txs:  []domain.Transaction{buy("AAPL", "10", "150")},
			want: []domain.Position{{Ticker: "AAPL", NetQuantity: d("10"), AveragePrice: d("150")}},
		},
		{
			name: "two buys and a partial sell",
			txs: []domain.Transaction{
				buy("AAPL", "10", "100"),
				buy("AAPL", "10", "200"),
				sell("AAPL", "5", "250"),
			},
			want: []domain.Position{{Ticker: "AAPL", NetQuantity: d("15"), AveragePrice: d("150")}},
		},
		{
			name: "fully sold position is dropped",
			txs: []domain.Transaction{
				buy("PETR4", "10", "100"),
				sell("PETR4", "10", "120"),
			},
			want: []domain.Position{},
		},
		{
			name: "oversold position is dropped",
			txs: []domain.Transaction{
				buy("PETR4", "10", "100"),
				sell("PETR4", "12", "120"),
			},
			want: []domain.Position{},
		},
		{
			name: "ticker with no transactions is absent",
			txs:  []domain.Transaction{buy("VALE3", "3", "60")},
			want: []domain.Position{{Ticker: "VALE3", NetQuantity: d("3"), AveragePrice: d("60")}},
		},
		{
			name: "unknown kind contributes nothing",
			txs: []domain.Transaction{
				buy("HGLG11", "4", "160"),
				tx("HGLG11", domain.TransactionKind("DIVIDEND"), "100", "1"),
				tx("HGLG11", domain.TransactionKind("buy"), "100", "1"),
			},
			want: []domain.Position{{Ticker: "HGLG11", NetQuantity: d("4"), AveragePrice: d("160")}},
		},
		{
			name: "unknown kind alone yields nothing",
			txs:  []domain.Transaction{tx("BTC", domain.TransactionKind("TRANSFER"), "1", "300000")},
			want: []domain.Position{},
		},
		{
			name: "multiple tickers sorted by ticker",
			txs: []domain.Transaction{
				buy("WEGE3", "5", "40"),
				buy("BBAS3", "100", "27.5"),
				buy("BBAS3", "100", "28.5"),
				sell("WEGE3", "5", "41"),
				buy("ITSA4", "0.5", "10.01"),
			},
			want: []domain.Position{
				{Ticker: "BBAS3", NetQuantity: d("200"), AveragePrice: d("28")},
				{Ticker: "ITSA4", NetQuantity: d("0.5"), AveragePrice: d("10.01")},
			},
		},
		{
			name: "fractional quantities stay exact",
			txs: []domain.Transaction{
				buy("BTC", "0.1", "100000"),
				buy("BTC", "0.2", "100000"),
				sell("BTC", "0.3", "150000"),
			},
			want: []domain.Position{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertPositions(t, tt.want, Aggregate(tt.txs))
		})
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	got := Aggregate(nil)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Aggregate([]domain.Transaction{})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregate_AveragePriceInvariantUnderSelling(t *testing.T) {
	buys := []domain.Transaction{
		buy("KNRI11", "7", "130.10"),
		buy("KNRI11", "3", "128.45"),
		buy("KNRI11", "11", "135"),
	}
	before := Aggregate(buys)
	require.Len(t, before, 1)

	withSells := append(append([]domain.Transaction{}, buys...),
		sell("KNRI11", "2", "1"),
		sell("KNRI11", "5", "999"),
	)
	after := Aggregate(withSells)
	require.Len(t, after, 1)

	assert.True(t, before[0].AveragePrice.Equal(after[0].AveragePrice))
	assert.True(t, after[0].NetQuantity.Equal(d("14")))

	// 7*130.10 + 3*128.45 + 11*135 = 910.7 + 385.35 + 1485 = 2781.05 over 21 units
	want := d("2781.05").Div(d("21"))
	assert.True(t, want.Equal(after[0].AveragePrice))
}

func TestAggregate_Idempotent(t *testing.T) {
	txs := []domain.Transaction{
		buy("AAPL", "10", "100"),
		buy("MSFT", "2", "410.33"),
		sell("AAPL", "3", "180"),
	}
	snapshot := append([]domain.Transaction{}, txs...)

	first := Aggregate(txs)
	second := Aggregate(txs)

	assertPositions(t, first, second)
	assert.Equal(t, snapshot, txs, "input must not be mutated")
}

func TestAggregate_OrderIndependent(t *testing.T) {
	txs := []domain.Transaction{
		buy("AAPL", "10", "100.10"),
		buy("AAPL", "0.3", "99.99"),
		sell("AAPL", "4", "120"),
		buy("MXRF11", "1000", "10.07"),
		sell("MXRF11", "200", "10.50"),
		buy("MXRF11", "55", "9.98"),
		buy("BOVA11", "1", "120"),
		sell("BOVA11", "1", "125"),
		tx("AAPL", domain.TransactionKind("SPLIT"), "10", "0"),
	}
	want := Aggregate(txs)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]domain.Transaction{}, txs...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assertPositions(t, want, Aggregate(shuffled))
	}
}

func TestAggregate_NoBuysNeverDividesByZero(t *testing.T) {
	// Only sells: net is negative, so nothing is emitted
	assert.NotPanics(t, func() {
		got := Aggregate([]domain.Transaction{sell("XPTO", "5", "10")})
		assert.Empty(t, got)
	})
}

func TestAveragePrice_ZeroDenominator(t *testing.T) {
	assert.True(t, averagePrice(decimal.Zero, decimal.Zero).IsZero())
	assert.True(t, averagePrice(d("500"), decimal.Zero).IsZero())
	assert.True(t, averagePrice(d("3000"), d("20")).Equal(d("150")))
}
