// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/investai/internal/config"
	"github.com/aristath/investai/internal/database"
)

// InitializeDatabase opens the application database and applies its schema
func InitializeDatabase(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{
		URL:     cfg.DatabaseURL,
		Profile: database.ProfileLedger, // Transactions are the source of truth
		Name:    "investai",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().
		Str("database", db.Name()).
		Str("dialect", string(db.Dialect())).
		Msg("Database initialized")

	return &Container{DB: db}, nil
}
