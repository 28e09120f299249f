package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/domain"
	testingpkg "github.com/aristath/investai/internal/testing"
)

type stubHoldings struct {
	values []domain.HoldingValue
	err    error
}

func (s stubHoldings) HoldingValues(context.Context, int64) ([]domain.HoldingValue, error) {
	return s.values, s.err
}

type fixture struct {
	svc       *Service
	repo      *Repository
	generator *testingpkg.MockNarrativeGenerator
	archiver  *testingpkg.MockArchiver
	notifier  *testingpkg.MockNotifier
	user      *domain.User
}

func newFixture(t *testing.T, holdings HoldingsProvider) *fixture {
	t.Helper()
	db := testingpkg.NewMemoryDB(t)
	userID := testingpkg.InsertUser(t, db, "eva@example.com")

	f := &fixture{
		repo:      NewRepository(db, database.DialectSQLite, zerolog.Nop()),
		generator: new(testingpkg.MockNarrativeGenerator),
		archiver:  new(testingpkg.MockArchiver),
		notifier:  new(testingpkg.MockNotifier),
		user:      &domain.User{ID: userID, Email: "eva@example.com", IsActive: true},
	}
	f.svc = NewService(holdings, f.generator, f.repo, f.archiver, f.notifier, zerolog.Nop())
	return f
}

func someHoldings() []domain.HoldingValue {
	return []domain.HoldingValue{
		{Ticker: "BBAS3", Category: domain.CategoryBRStocks, Value: decimal.RequireFromString("1500")},
	}
}

func TestService_Generate(t *testing.T) {
	f := newFixture(t, stubHoldings{values: someHoldings()})
	ctx := context.Background()

	f.generator.On("Generate", mock.Anything, someHoldings(), domain.LanguageEN).Return("## Analysis").Once()
	f.archiver.On("Archive", mock.Anything, mock.MatchedBy(func(a domain.Analysis) bool {
		return a.UserID == f.user.ID && a.UUID != "" && a.Content == "## Analysis"
	})).Return(nil).Once()
	f.notifier.On("Send", mock.Anything, "eva@example.com", "Your Portfolio Analysis - Invest-AI", "## Analysis").Return(nil).Once()

	a, err := f.svc.Generate(ctx, f.user, domain.LanguageEN)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)
	assert.Equal(t, "## Analysis", a.Content)

	history, err := f.svc.History(ctx, f.user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, a.UUID, history[0].UUID)
	assert.Equal(t, domain.LanguageEN, history[0].Language)

	f.generator.AssertExpectations(t)
	f.archiver.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestService_Generate_DeliveryFailuresKeepAnalysis(t *testing.T) {
	f := newFixture(t, stubHoldings{values: someHoldings()})
	ctx := context.Background()

	f.generator.On("Generate", mock.Anything, mock.Anything, domain.LanguagePT).Return("texto")
	f.archiver.On("Archive", mock.Anything, mock.Anything).Return(errors.New("bucket gone"))
	f.notifier.On("Send", mock.Anything, mock.Anything, "Sua Análise de Portfólio - Invest-AI", "texto").Return(errors.New("smtp down"))

	a, err := f.svc.Generate(ctx, f.user, domain.LanguagePT)
	require.NoError(t, err)
	assert.Equal(t, "texto", a.Content)

	history, err := f.svc.History(ctx, f.user.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestService_Generate_EmptyPortfolio(t *testing.T) {
	f := newFixture(t, stubHoldings{values: []domain.HoldingValue{}})

	_, err := f.svc.Generate(context.Background(), f.user, domain.LanguagePT)
	assert.ErrorIs(t, err, ErrEmptyPortfolio)
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Generate_ValuationError(t *testing.T) {
	f := newFixture(t, stubHoldings{err: errors.New("db locked")})

	_, err := f.svc.Generate(context.Background(), f.user, domain.LanguagePT)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyPortfolio)
}

func TestRepository_ListByUserNewestFirst(t *testing.T) {
	db := testingpkg.NewMemoryDB(t)
	userID := testingpkg.InsertUser(t, db, "fabio@example.com")
	otherID := testingpkg.InsertUser(t, db, "gil@example.com")
	repo := NewRepository(db, database.DialectSQLite, zerolog.Nop())
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &domain.Analysis{UserID: userID, Content: content, Language: domain.LanguagePT}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Analysis{UserID: otherID, Content: "other", Language: domain.LanguageEN}))

	list, err := repo.ListByUser(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "third", list[0].Content)
	assert.Equal(t, "second", list[1].Content)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "Sua Análise de Portfólio - Invest-AI", Subject(domain.LanguagePT))
	assert.Equal(t, "Your Portfolio Analysis - Invest-AI", Subject(domain.LanguageEN))
	assert.Equal(t, "Sua Análise de Portfólio - Invest-AI", Subject("fr"))
}
