package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/domain"
	testingpkg "github.com/aristath/investai/internal/testing"
)

func newTestService(t *testing.T) (*Service, int64) {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "ledger")
	t.Cleanup(cleanup)

	log := zerolog.Nop()
	svc := NewService(
		NewAssetRepository(db.Conn(), db.Dialect(), log),
		NewTransactionRepository(db.Conn(), db.Dialect(), log),
		log,
	)
	userID := testingpkg.InsertUser(t, db.Conn(), "carla@example.com")
	return svc, userID
}

func TestService_EnsureAsset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	asset, created, err := svc.EnsureAsset(ctx, NewAsset{Ticker: " mxrf11 ", Category: "fiis"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "MXRF11", asset.Ticker)
	assert.Equal(t, domain.CategoryFIIs, asset.Category)
	assert.Equal(t, "MXRF11", asset.Name, "name defaults to ticker")

	again, created, err := svc.EnsureAsset(ctx, NewAsset{Ticker: "MXRF11", Category: "OUTROS", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, asset.ID, again.ID)
	assert.Equal(t, domain.CategoryFIIs, again.Category, "existing asset is returned unchanged")

	_, _, err = svc.EnsureAsset(ctx, NewAsset{Ticker: "   "})
	assert.True(t, errors.Is(err, ErrInvalidAsset))
}

func TestService_RecordTransaction(t *testing.T) {
	svc, userID := newTestService(t)
	ctx := context.Background()

	asset, _, err := svc.EnsureAsset(ctx, NewAsset{Ticker: "AAPL", Category: domain.CategoryUSStocks})
	require.NoError(t, err)

	t.Run("valid buy with lowercase type", func(t *testing.T) {
		when := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
		tx, err := svc.RecordTransaction(ctx, userID, NewTransaction{
			AssetID:  asset.ID,
			Type:     "buy",
			Quantity: decimal.NewFromInt(10),
			Price:    decimal.NewFromInt(150),
			Date:     &when,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.KindBuy, tx.Kind)
		assert.Equal(t, "AAPL", tx.Ticker)
		assert.Equal(t, when, tx.Date)
		assert.NotZero(t, tx.ID)
	})

	t.Run("unknown asset", func(t *testing.T) {
		_, err := svc.RecordTransaction(ctx, userID, NewTransaction{
			AssetID:  9999,
			Type:     "BUY",
			Quantity: decimal.NewFromInt(1),
			Price:    decimal.NewFromInt(1),
		})
		assert.True(t, errors.Is(err, ErrAssetNotFound))
	})

	invalid := []struct {
		name string
		in   NewTransaction
	}{
		{"unknown kind", NewTransaction{AssetID: asset.ID, Type: "DIVIDEND", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}},
		{"zero quantity", NewTransaction{AssetID: asset.ID, Type: "BUY", Quantity: decimal.Zero, Price: decimal.NewFromInt(1)}},
		{"negative price", NewTransaction{AssetID: asset.ID, Type: "SELL", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(-1)}},
		{"missing asset id", NewTransaction{Type: "BUY", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(1)}},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordTransaction(ctx, userID, tc.in)
			assert.True(t, errors.Is(err, ErrInvalidTransaction), "got %v", err)
		})
	}

	t.Run("history only holds valid rows", func(t *testing.T) {
		txs, err := svc.History(ctx, userID, 0)
		require.NoError(t, err)
		assert.Len(t, txs, 1)
	})
}
