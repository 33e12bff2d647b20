package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicURL      string   `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
		MaxUploadMB    int      `yaml:"max_upload_mb" env:"SERVER_MAX_UPLOAD_MB"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsPath  string `yaml:"migrations_path" env:"DB_MIGRATIONS_PATH"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Storage struct {
		Driver              string `yaml:"driver" env:"STORAGE_DRIVER"`
		CloudinaryCloudName string `yaml:"cloudinary_cloud_name" env:"CLOUDINARY_CLOUD_NAME"`
		CloudinaryAPIKey    string `yaml:"cloudinary_api_key" env:"CLOUDINARY_API_KEY"`
		CloudinaryAPISecret string `yaml:"cloudinary_api_secret" env:"CLOUDINARY_API_SECRET"`
		PaperFolder         string `yaml:"paper_folder" env:"STORAGE_PAPER_FOLDER"`
		AvatarFolder        string `yaml:"avatar_folder" env:"STORAGE_AVATAR_FOLDER"`
	} `yaml:"storage"`

	Redis struct {
		URL             string `yaml:"url" env:"REDIS_URL"`
		RateLimitPerMin int    `yaml:"rate_limit_per_min" env:"REDIS_RATE_LIMIT_PER_MIN"`
	} `yaml:"redis"`

	Pagination struct {
		DefaultLimit int `yaml:"default_limit" env:"PAGINATION_DEFAULT_LIMIT"`
		MaxLimit     int `yaml:"max_limit" env:"PAGINATION_MAX_LIMIT"`
	} `yaml:"pagination"`

	Admin struct {
		Name     string `yaml:"name" env:"ADMIN_NAME"`
		Email    string `yaml:"email" env:"ADMIN_EMAIL"`
		Password string `yaml:"password" env:"ADMIN_PASSWORD"`
	} `yaml:"admin"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from defaults, an optional YAML file, a
// .env file and finally the process environment.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := envOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./uploads"
	config.Server.MaxUploadMB = 10

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "paperarchive"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsPath = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "paperarchive"

	config.Storage.Driver = "local"
	config.Storage.PaperFolder = "question_papers"
	config.Storage.AvatarFolder = "user_avatars"

	config.Redis.RateLimitPerMin = 120

	config.Pagination.DefaultLimit = 10
	config.Pagination.MaxLimit = 100

	config.Admin.Name = "Administrator"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	switch strings.ToLower(config.Storage.Driver) {
	case "local":
	case "cloudinary":
		if config.Storage.CloudinaryCloudName == "" || config.Storage.CloudinaryAPIKey == "" || config.Storage.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary storage requires cloud name, api key and api secret")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	if config.Pagination.DefaultLimit <= 0 || config.Pagination.MaxLimit <= 0 {
		return fmt.Errorf("pagination limits must be positive")
	}
	if config.Pagination.DefaultLimit > config.Pagination.MaxLimit {
		return fmt.Errorf("pagination default limit %d exceeds max limit %d", config.Pagination.DefaultLimit, config.Pagination.MaxLimit)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// BaseURL returns the externally reachable base URL of the API server.
func (c *Config) BaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Server.Mode) == "production"
}
