package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/investai/internal/clients/mailer"
	"github.com/aristath/investai/internal/config"
	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/reliability"
)

func testConfig(t *testing.T) *config.Config {
	tmpDir := t.TempDir()
	return &config.Config{
		ProjectName:          "Invest-AI 2.0",
		APIPrefix:            "/api/v1",
		DataDir:              tmpDir,
		DatabaseURL:          filepath.Join(tmpDir, "investai.db"),
		SecretKey:            "test-secret",
		AccessTokenExpiry:    30 * time.Minute,
		GeminiModels:         []string{"gemini-2.0-flash"},
		DefaultLanguage:      "en",
		ReportingCurrency:    "BRL",
		PriceCacheTTL:        10 * time.Minute,
		PriceRefreshSchedule: "@every 15m",
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t)

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	t.Cleanup(func() { _ = container.Close() })

	// Verify container is fully populated
	assert.NotNil(t, container.DB)
	assert.NotNil(t, container.UserRepo)
	assert.NotNil(t, container.TransactionRepo)
	assert.NotNil(t, container.Authenticator)
	assert.NotNil(t, container.PortfolioService)
	assert.NotNil(t, container.AnalysisService)
	assert.Equal(t, domain.LanguageEN, container.DefaultLang)

	// Optional integrations fall back to no-ops without credentials
	assert.IsType(t, &mailer.NoopNotifier{}, container.Notifier)
	assert.IsType(t, reliability.NoopArchive{}, container.Archiver)

	// Jobs are registered but the scheduler is not started
	require.NotNil(t, container.Jobs)
	assert.NotNil(t, container.Jobs.RefreshPrices)
	assert.NotNil(t, container.Jobs.DailyMaintenance)

	jobs := container.Scheduler.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "daily_maintenance", jobs[0].Name)
	assert.Equal(t, "refresh_prices", jobs[1].Name)
	assert.Equal(t, "@every 15m", jobs[1].Schedule)
}

func TestWire_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.PriceRefreshSchedule = "whenever"

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}

func TestInitializeRepositories_NoDatabase(t *testing.T) {
	assert.Error(t, InitializeRepositories(&Container{}, zerolog.Nop()))
}

func TestContainer_CloseNil(t *testing.T) {
	var c *Container
	assert.NoError(t, c.Close())
}
