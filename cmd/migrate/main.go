package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/yigit/paperarchive/internal/config"
	"github.com/yigit/paperarchive/internal/pkg/logger"
)

func main() {
	var configPath, migrationDir string
	flag.StringVar(&configPath, "config", filepath.Join("configs", "config.yaml"), "Path to the config file")
	flag.StringVar(&migrationDir, "path", "", "Path to migration files (defaults to database.migrations_path)")
	flag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if migrationDir == "" {
		migrationDir = cfg.Database.MigrationsPath
	}

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	m, err := migrate.New("file://"+migrationDir, cfg.GetPostgresConnectionString())
	if err != nil {
		logger.Fatal().Err(err).Msg("Migration failed to initialize")
	}
	defer m.Close()

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("Up failed")
		}
		logger.Info().Msg("Migrated up successfully")
	case "down":
		if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal().Err(err).Msg("Down failed")
		}
		logger.Info().Msg("Rolled back one migration")
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			logger.Fatal().Err(err).Msg("Version failed")
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Current migration version")
	case "force":
		if len(args) < 2 {
			logger.Fatal().Msg("force requires a version argument")
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			logger.Fatal().Err(err).Msg("Invalid version")
		}
		if err := m.Force(v); err != nil {
			logger.Fatal().Err(err).Msg("Force failed")
		}
		logger.Info().Int("version", v).Msg("Forced migration version")
	default:
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println("Commands: up, down, version, force <version>")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
