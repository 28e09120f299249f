package di

import (
	"github.com/aristath/investai/internal/clients/gemini"
	"github.com/aristath/investai/internal/clients/yahoo"
	"github.com/aristath/investai/internal/database"
	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/analysis"
	"github.com/aristath/investai/internal/modules/ledger"
	"github.com/aristath/investai/internal/modules/market"
	"github.com/aristath/investai/internal/modules/portfolio"
	"github.com/aristath/investai/internal/modules/users"
	"github.com/aristath/investai/internal/reliability"
	"github.com/aristath/investai/internal/scheduler"
)

// Container holds all application dependencies. It is the single source of
// truth for service instances and is handed to the HTTP server.
type Container struct {
	DB *database.DB

	// Repositories
	UserRepo        *users.Repository
	AssetRepo       *ledger.AssetRepository
	TransactionRepo *ledger.TransactionRepository
	PriceRepo       *market.PriceRepository
	AnalysisRepo    *analysis.Repository

	// Clients
	YahooClient *yahoo.Client
	Generator   *gemini.Generator
	Notifier    domain.Notifier
	Archiver    domain.Archiver

	// Services
	TokenIssuer      *users.TokenIssuer
	UserService      *users.Service
	Authenticator    *users.Authenticator
	LedgerService    *ledger.Service
	PriceService     *market.PriceService
	PortfolioService *portfolio.PortfolioService
	AnalysisService  *analysis.Service

	// Background jobs
	Scheduler   *scheduler.Scheduler
	Jobs        *JobInstances
	DefaultLang domain.Language
}

// JobInstances holds the registered job instances for manual triggering
type JobInstances struct {
	RefreshPrices    *scheduler.RefreshPricesJob
	DailyMaintenance *reliability.DailyMaintenanceJob
}

// Close releases the database connection
func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
