package main

import (
	"context"
	"os"

	"github.com/yigit/paperarchive/internal/pkg/logger"
	"github.com/yigit/paperarchive/internal/server"
)

// @title Question Paper Archive API
// @version 1.0
// @description Upload, browse and search archived exam question papers
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	srv, err := server.NewServer(context.Background())
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
