package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/modules/analysis"
	"github.com/aristath/investai/internal/modules/ledger"
	"github.com/aristath/investai/internal/modules/market"
	"github.com/aristath/investai/internal/modules/users"
)

// InitializeRepositories creates all repositories on the container's database
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.DB == nil {
		return fmt.Errorf("container has no database")
	}

	conn := container.DB.Conn()
	dialect := container.DB.Dialect()

	container.UserRepo = users.NewRepository(conn, dialect, log)
	container.AssetRepo = ledger.NewAssetRepository(conn, dialect, log)
	container.TransactionRepo = ledger.NewTransactionRepository(conn, dialect, log)
	container.PriceRepo = market.NewPriceRepository(conn, dialect, log)
	container.AnalysisRepo = analysis.NewRepository(conn, dialect, log)

	log.Debug().Msg("Repositories initialized")
	return nil
}
