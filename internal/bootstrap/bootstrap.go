package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/paperarchive/internal/app/controllers"
	appRepos "github.com/yigit/paperarchive/internal/app/repositories"
	appRoutes "github.com/yigit/paperarchive/internal/app/routes"
	appServices "github.com/yigit/paperarchive/internal/app/services"
	"github.com/yigit/paperarchive/internal/config"
	"github.com/yigit/paperarchive/internal/db"
	appMiddleware "github.com/yigit/paperarchive/internal/middleware"
	pkgAuth "github.com/yigit/paperarchive/internal/pkg/auth"
	"github.com/yigit/paperarchive/internal/pkg/filestorage"
	"github.com/yigit/paperarchive/internal/pkg/helpers"
	"github.com/yigit/paperarchive/internal/pkg/logger"
	"github.com/yigit/paperarchive/internal/pkg/metrics"
	"github.com/yigit/paperarchive/internal/pkg/validation"
)

const metricsNamespace = "paperarchive"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos           *appRepos.Repositories
	JWTService      *pkgAuth.JWTService
	FileStore       filestorage.FileStore
	PaperService    appServices.PaperService
	AuthService     *appServices.AuthService
	UserService     *appServices.UserService
	PaperController *appControllers.PaperController
	AuthController  *appControllers.AuthController
	UserController  *appControllers.UserController
	AuthMiddleware  *appMiddleware.AuthMiddleware
	RateLimiter     *appMiddleware.RateLimiter // nil without redis
	Registry        *prometheus.Registry
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := db.MigrateUp(database, cfg.Database.MigrationsPath, lgr); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}

	return database, nil
}

// SetupRedis connects to redis when a URL is configured. It returns a nil
// client otherwise, which disables rate limiting.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		lgr.Info().Msg("Redis not configured, rate limiting disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	lgr.Info().Str("addr", opt.Addr).Int("db", opt.DB).Msg("Redis connected")
	return rdb, nil
}

// NewFileStore builds the file store selected by the storage driver.
func NewFileStore(cfg *config.Config) (filestorage.FileStore, error) {
	switch strings.ToLower(cfg.Storage.Driver) {
	case "cloudinary":
		return filestorage.NewCloudinaryStorage(
			cfg.Storage.CloudinaryCloudName,
			cfg.Storage.CloudinaryAPIKey,
			cfg.Storage.CloudinaryAPISecret,
		), nil
	case "local", "":
		return filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.BaseURL())
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, conn db.DBTX, rdb *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	validation.Setup()

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.NewMetrics(metricsNamespace, deps.Registry)

	deps.Repos = appRepos.NewRepositories(conn)

	var err error
	deps.FileStore, err = NewFileStore(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 24*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	maxUploadBytes := int64(cfg.Server.MaxUploadMB) << 20

	deps.PaperService = appServices.NewPaperService(
		deps.Repos.PaperRepository,
		deps.Repos.UserRepository,
		deps.FileStore,
		deps.Metrics,
		appServices.PaperServiceConfig{
			Folder:         cfg.Storage.PaperFolder,
			MaxUploadBytes: maxUploadBytes,
		},
	)
	deps.AuthService = appServices.NewAuthService(deps.Repos.UserRepository, deps.JWTService, lgr)
	deps.UserService = appServices.NewUserService(deps.Repos.UserRepository, deps.FileStore, cfg.Storage.AvatarFolder, maxUploadBytes)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if rdb != nil && cfg.Redis.RateLimitPerMin > 0 {
		deps.RateLimiter = appMiddleware.NewRateLimiter(
			appMiddleware.NewRedisCounter(rdb),
			cfg.Redis.RateLimitPerMin,
			time.Minute,
			deps.Metrics,
		)
	}

	deps.PaperController = appControllers.NewPaperController(deps.PaperService, appControllers.PaperControllerConfig{
		DefaultLimit:   cfg.Pagination.DefaultLimit,
		MaxLimit:       cfg.Pagination.MaxLimit,
		MaxUploadBytes: maxUploadBytes,
	})
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.UserController = appControllers.NewUserController(deps.UserService)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20

	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.ExposeHeaders = []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(appMiddleware.Metrics(deps.Metrics))
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	appRoutes.SetupRouter(router,
		deps.PaperController,
		deps.AuthController,
		deps.UserController,
		deps.AuthMiddleware,
	)

	if _, ok := deps.FileStore.(*filestorage.LocalStorage); ok {
		router.Static(filestorage.LocalURLPrefix, cfg.Server.StoragePath)
		lgr.Info().Str("path", cfg.Server.StoragePath).Msg("Static file serving configured for uploads directory")
	}

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}
