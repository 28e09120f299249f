package di

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/clients/gemini"
	"github.com/aristath/investai/internal/clients/mailer"
	"github.com/aristath/investai/internal/clients/yahoo"
	"github.com/aristath/investai/internal/config"
	"github.com/aristath/investai/internal/domain"
	"github.com/aristath/investai/internal/modules/analysis"
	"github.com/aristath/investai/internal/modules/ledger"
	"github.com/aristath/investai/internal/modules/market"
	"github.com/aristath/investai/internal/modules/portfolio"
	"github.com/aristath/investai/internal/modules/users"
	"github.com/aristath/investai/internal/reliability"
)

// InitializeServices creates external clients and all services.
// Repositories must already be in place.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container.UserRepo == nil {
		return fmt.Errorf("repositories not initialized")
	}

	if err := initializeClients(ctx, container, cfg, log); err != nil {
		return err
	}

	container.DefaultLang = domain.ParseLanguage(cfg.DefaultLanguage, domain.LanguagePT)

	// Auth
	container.TokenIssuer = users.NewTokenIssuer(cfg.SecretKey, cfg.AccessTokenExpiry)
	container.UserService = users.NewService(container.UserRepo, container.TokenIssuer, log)
	container.Authenticator = users.NewAuthenticator(container.UserService, log)

	// Ledger and pricing
	container.LedgerService = ledger.NewService(container.AssetRepo, container.TransactionRepo, log)
	container.PriceService = market.NewPriceService(container.PriceRepo, container.YahooClient, cfg.PriceCacheTTL, log)

	// Portfolio reads transactions and prices only through their interfaces
	container.PortfolioService = portfolio.NewPortfolioService(container.TransactionRepo, container.PriceService, log)

	container.AnalysisService = analysis.NewService(
		container.PortfolioService,
		container.Generator,
		container.AnalysisRepo,
		container.Archiver,
		container.Notifier,
		log,
	)

	log.Debug().Msg("Services initialized")
	return nil
}

func initializeClients(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.YahooClient = yahoo.NewClient(log)

	// Narrative backends, one per configured model
	var backends []gemini.Backend
	if cfg.GeminiAPIKey != "" {
		b, err := gemini.NewGeminiBackends(ctx, cfg.GeminiAPIKey, cfg.GeminiModels)
		if err != nil {
			// The generator reports "model not available" instead
			log.Error().Err(err).Msg("Failed to create Gemini client")
		} else {
			backends = b
		}
	}
	container.Generator = gemini.NewGenerator(cfg.GeminiAPIKey != "", backends, cfg.ReportingCurrency, log)

	if cfg.Email.Enabled() {
		container.Notifier = mailer.NewSMTPNotifier(mailer.Config{
			Host:     cfg.Email.Host,
			Port:     cfg.Email.Port,
			Sender:   cfg.Email.Sender,
			Password: cfg.Email.Password,
			Timeout:  30 * time.Second,
		}, log)
	} else {
		container.Notifier = mailer.NewNoopNotifier(log)
	}

	if cfg.Archive.Enabled() {
		archive, err := reliability.NewAnalysisArchive(ctx, reliability.ArchiveConfig{
			Bucket:          cfg.Archive.Bucket,
			Endpoint:        cfg.Archive.Endpoint,
			Region:          cfg.Archive.Region,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
		}, log)
		if err != nil {
			return fmt.Errorf("failed to initialize analysis archive: %w", err)
		}
		container.Archiver = archive
	} else {
		container.Archiver = reliability.NoopArchive{}
	}

	return nil
}
