package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/portfolio"
	"github.com/aristath/investai/internal/modules/users"
	testingpkg "github.com/aristath/investai/internal/testing"
)

const testUserID int64 = 3

func withTestUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := &domain.User{ID: testUserID, Email: "dora@example.com", IsActive: true}
		next.ServeHTTP(w, r.WithContext(users.WithUser(r.Context(), u)))
	})
}

func setupRouter(store domain.TransactionStore, prices domain.PricingSource) http.Handler {
	svc := portfolio.NewPortfolioService(store, prices, zerolog.Nop())
	r := chi.NewRouter()
	NewHandler(svc, zerolog.Nop()).RegisterRoutes(r, withTestUser)
	return r
}

func history() []domain.Transaction {
	return []domain.Transaction{
		{Ticker: "ITSA4", Category: domain.CategoryBRStocks, Kind: domain.KindBuy, Quantity: decimal.RequireFromString("100"), Price: decimal.RequireFromString("10")},
		{Ticker: "ITSA4", Category: domain.CategoryBRStocks, Kind: domain.KindBuy, Quantity: decimal.RequireFromString("100"), Price: decimal.RequireFromString("12")},
	}
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	require.NotPanics(t, func() {
		NewHandler(&portfolio.PortfolioService{}, zerolog.Nop()).RegisterRoutes(router, withTestUser)
	})

	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/portfolio/portfolio"},
		{"GET", "/portfolio/valuation"},
		{"POST", "/portfolio/preview"},
	}
	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			var code int
			func() {
				defer func() {
					if recover() != nil {
						code = http.StatusInternalServerError
					}
				}()
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, strings.NewReader("{}")))
				code = rec.Code
			}()
			assert.NotEqual(t, http.StatusNotFound, code)
			assert.NotEqual(t, http.StatusMethodNotAllowed, code)
		})
	}
}

func TestHandleGetPortfolio(t *testing.T) {
	store := new(testingpkg.MockTransactionStore)
	store.On("ListTransactions", mock.Anything, testUserID).Return(history(), nil)

	rec := httptest.NewRecorder()
	setupRouter(store, new(testingpkg.MockPricingSource)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body []positionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "ITSA4", body[0].Ticker)
	assert.Equal(t, 200.0, body[0].NetQuantity)
	assert.Equal(t, 11.0, body[0].AveragePrice)
}

func TestHandleGetPortfolio_Empty(t *testing.T) {
	store := new(testingpkg.MockTransactionStore)
	store.On("ListTransactions", mock.Anything, testUserID).Return([]domain.Transaction{}, nil)

	rec := httptest.NewRecorder()
	setupRouter(store, new(testingpkg.MockPricingSource)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio/portfolio", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleGetPortfolio_StoreError(t *testing.T) {
	store := new(testingpkg.MockTransactionStore)
	store.On("ListTransactions", mock.Anything, testUserID).Return(nil, errors.New("boom"))

	rec := httptest.NewRecorder()
	setupRouter(store, new(testingpkg.MockPricingSource)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio/portfolio", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleGetValuation(t *testing.T) {
	store := new(testingpkg.MockTransactionStore)
	store.On("ListTransactions", mock.Anything, testUserID).Return(history(), nil)
	prices := new(testingpkg.MockPricingSource)
	prices.On("GetPrice", mock.Anything, "ITSA4").Return(decimal.RequireFromString("12.5"), nil)

	rec := httptest.NewRecorder()
	setupRouter(store, prices).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/portfolio/valuation", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body valuationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Positions, 1)
	assert.Equal(t, "market", body.Positions[0].PriceSource)
	assert.Equal(t, 2500.0, body.Positions[0].MarketValue)
	assert.Equal(t, 2200.0, body.TotalCostBasis)
	assert.Equal(t, 300.0, body.UnrealizedPnL)
}

func TestHandlePreview(t *testing.T) {
	store := new(testingpkg.MockTransactionStore)
	store.On("ListTransactions", mock.Anything, testUserID).Return(history(), nil)
	router := setupRouter(store, new(testingpkg.MockPricingSource))

	body := `{"transactions":[{"ticker":"ITSA4","type":"SELL","quantity":"50","price":"13"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/preview", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var positions []positionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &positions))
	require.Len(t, positions, 1)
	assert.Equal(t, 150.0, positions[0].NetQuantity)
	assert.Equal(t, 11.0, positions[0].AveragePrice)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/portfolio/preview",
		strings.NewReader(`{"transactions":[{"ticker":"ITSA4","type":"GIFT","quantity":"1","price":"1"}]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
