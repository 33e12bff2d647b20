package db

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// MigrateUp applies every pending migration found under migrationsPath.
func MigrateUp(database *PostgresDB, migrationsPath string, lgr zerolog.Logger) error {
	if database == nil || database.Pool == nil {
		return fmt.Errorf("database pool not initialized")
	}
	if _, err := os.Stat(migrationsPath); err != nil {
		return fmt.Errorf("migrations path validation failed: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(database.Pool)
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{MigrationsTable: "schema_migrations"})
	if err != nil {
		return fmt.Errorf("failed to create postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	lgr.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database migrations applied")
	return nil
}
