package main

import (
	"context"
	"fmt"
	"log/slog"

	portsrepo "github.com/SscSPs/flowgate/internal/core/ports/repositories"
	"github.com/SscSPs/flowgate/internal/platform/config"
	"github.com/SscSPs/flowgate/internal/repositories/database/pgsql"
	"github.com/SscSPs/flowgate/internal/repositories/database/sqlite"
	"github.com/SscSPs/flowgate/pkg/database"
)

// migrateStore applies every pending migration for the configured driver.
func migrateStore(logger *slog.Logger, cfg *config.Config) error {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return database.MigratePostgres(logger, cfg.DatabaseURL)
	case config.DriverSQLite:
		return database.MigrateSQLite(logger, cfg.SQLitePath)
	}
	return fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

// openStore connects to the configured store and returns its repositories.
func openStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (portsrepo.RepositoryProvider, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		logger.Info("Database connection pool established.", slog.String("driver", cfg.StorageDriver))
		return pgsql.NewRepositoryProvider(pool), nil
	case config.DriverSQLite:
		db, err := database.NewSQLiteDB(ctx, cfg.SQLitePath)
		if err != nil {
			return portsrepo.RepositoryProvider{}, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		logger.Info("SQLite store opened.", slog.String("path", cfg.SQLitePath))
		return sqlite.NewRepositoryProvider(db), nil
	}
	return portsrepo.RepositoryProvider{}, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}
