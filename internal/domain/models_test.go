package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionKind(t *testing.T) {
	tests := []struct {
		in      string
		want    TransactionKind
		wantErr bool
	}{
		{"BUY", KindBuy, false},
		{"buy", KindBuy, false},
		{" Sell ", KindSell, false},
		{"DIVIDEND", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransactionKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryFixedIncome, NormalizeCategory(" renda_fixa "))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
	assert.Equal(t, "ETF", NormalizeCategory("etf"))
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, LanguageEN, ParseLanguage("EN", LanguagePT))
	assert.Equal(t, LanguagePT, ParseLanguage("pt", LanguageEN))
	assert.Equal(t, LanguagePT, ParseLanguage("fr", LanguagePT))
	assert.Equal(t, LanguageEN, ParseLanguage("", LanguageEN))
}

func TestPosition_CostBasis(t *testing.T) {
	p := Position{
		Ticker:       "ITSA4",
		NetQuantity:  decimal.RequireFromString("15"),
		AveragePrice: decimal.RequireFromString("150"),
	}
	assert.True(t, p.CostBasis().Equal(decimal.NewFromInt(2250)))
}
