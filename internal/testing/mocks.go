package testing

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/aristath/investai/internal/domain"
)

// MockTransactionStore is a testify mock of domain.TransactionStore
type MockTransactionStore struct {
	mock.Mock
}

func (m *MockTransactionStore) ListTransactions(ctx context.Context, userID int64) ([]domain.Transaction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

// MockPricingSource is a testify mock of domain.PricingSource
type MockPricingSource struct {
	mock.Mock
}

func (m *MockPricingSource) GetPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	args := m.Called(ctx, ticker)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockNarrativeGenerator is a testify mock of domain.NarrativeGenerator
type MockNarrativeGenerator struct {
	mock.Mock
}

func (m *MockNarrativeGenerator) Generate(ctx context.Context, holdings []domain.HoldingValue, lang domain.Language) string {
	args := m.Called(ctx, holdings, lang)
	return args.String(0)
}

// MockNotifier is a testify mock of domain.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, recipient, subject, body string) error {
	args := m.Called(ctx, recipient, subject, body)
	return args.Error(0)
}

// MockArchiver is a testify mock of domain.Archiver
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, analysis domain.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}
