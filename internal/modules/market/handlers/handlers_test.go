package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/modules/market"
	testingpkg "github.com/aristath/investai/internal/testing"
)

type stubFetcher map[string]decimal.Decimal

func (s stubFetcher) FetchPrice(_ context.Context, ticker string) (decimal.Decimal, error) {
	if p, ok := s[ticker]; ok {
		return p, nil
	}
	return decimal.Zero, errors.New("unknown ticker")
}

func passThrough(next http.Handler) http.Handler { return next }

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testingpkg.NewMemoryDB(t)
	repo := market.NewPriceRepository(db, database.DialectSQLite, zerolog.Nop())
	svc := market.NewPriceService(repo, stubFetcher{"AAPL": decimal.RequireFromString("187.25")}, time.Minute, zerolog.Nop())

	r := chi.NewRouter()
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(r, passThrough)
	return r
}

func TestHandleGetPrice(t *testing.T) {
	h := setupRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/prices/aapl", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var q quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, "AAPL", q.Ticker)
	assert.Equal(t, 187.25, q.Price)
	assert.Equal(t, market.SourceYahoo, q.Source)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/prices/NOPE3", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleSetPrice(t *testing.T) {
	h := setupRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/market/prices/CDB_BANCO_X", strings.NewReader(`{"price":1043.5}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/market/prices/CDB_BANCO_X", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var q quoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, 1043.5, q.Price)
	assert.Equal(t, market.SourceManual, q.Source)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/market/prices/X", strings.NewReader(`{"price":-1}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
