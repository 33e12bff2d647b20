package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/yigit/paperarchive/internal/bootstrap"
	"github.com/yigit/paperarchive/internal/config"
	"github.com/yigit/paperarchive/internal/db"
	"github.com/yigit/paperarchive/internal/seed"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	database *db.PostgresDB
	redis    *redis.Client
	logger   zerolog.Logger
	http     *http.Server
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(ctx context.Context) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	database, err := bootstrap.SetupDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	rdb, err := bootstrap.SetupRedis(ctx, cfg, lgr)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to setup redis: %w", err)
	}

	deps, err := bootstrap.BuildDependencies(cfg, database.Pool, rdb, lgr)
	if err != nil {
		database.Close()
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}

	if err := seed.EnsureAdmin(ctx, deps.Repos.UserRepository, seed.AdminAccount{
		Name:     cfg.Admin.Name,
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	}, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create admin account, proceeding anyway...")
	}

	return &Server{
		config:   cfg,
		router:   bootstrap.SetupRouter(cfg, deps, lgr),
		database: database,
		redis:    rdb,
		logger:   lgr,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.logger.Info().Str("port", s.config.Server.Port).Msg("Starting server...")

	s.http = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	shutdownError := false

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownError = true
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Redis close error")
			shutdownError = true
		}
	}

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
		s.logger.Info().Msg("Database connection pool closed.")
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	if shutdownError {
		return errors.New("server shutdown completed with errors")
	}
	return nil
}
