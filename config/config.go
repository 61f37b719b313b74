package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig
	Catalog     CatalogConfig
	Cache       CacheConfig
	Translation TranslationConfig
	Bundle      BundleConfig
	Lottery     LotteryConfig
	Dedup       DedupConfig
	RateLimit   RateLimitConfig
	Log         LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// CatalogConfig selects where products are read from
type CatalogConfig struct {
	Source      string `mapstructure:"source"` // "memory" or "postgres"
	DatabaseURL string `mapstructure:"database_url"`
	SeedFile    string `mapstructure:"seed_file"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // only "memory" today
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// TranslationConfig holds note translation configuration
type TranslationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// BundleConfig tunes the preference bundle selector
type BundleConfig struct {
	ExactFitTolerance   float64 `mapstructure:"exact_fit_tolerance"`
	MaxRepairIterations int     `mapstructure:"max_repair_iterations"`
}

// LotteryConfig tunes the randomized budget fill
type LotteryConfig struct {
	MinBudget float64 `mapstructure:"min_budget"`
	MaxBudget float64 `mapstructure:"max_budget"`
	Size      int     `mapstructure:"size"`
	Trials    int     `mapstructure:"trials"`
	Tolerance float64 `mapstructure:"tolerance"`
	CloseFit  float64 `mapstructure:"close_fit"`
}

// DedupConfig holds request deduplication configuration
type DedupConfig struct {
	MaxDistance int `mapstructure:"max_distance"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	// Local .env files are a development convenience only
	if os.Getenv("DECANTBOX_SERVER_ENVIRONMENT") != "production" {
		if err := loadEnvFile(); err != nil {
			return nil, fmt.Errorf("error reading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/decantbox/")

	// Environment variable settings
	v.SetEnvPrefix("DECANTBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment.
// Existing variables win; a missing file is not an error.
func loadEnvFile() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Catalog defaults
	v.SetDefault("catalog.source", "memory")
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.seed_file", "data/catalog.json")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Translation defaults
	v.SetDefault("translation.ttl", "1h")

	// Bundle defaults
	v.SetDefault("bundle.exact_fit_tolerance", 5)
	v.SetDefault("bundle.max_repair_iterations", 1000)

	// Lottery defaults
	v.SetDefault("lottery.min_budget", 200)
	v.SetDefault("lottery.max_budget", 1000)
	v.SetDefault("lottery.size", 2)
	v.SetDefault("lottery.trials", 50)
	v.SetDefault("lottery.tolerance", 20)
	v.SetDefault("lottery.close_fit", 5)

	// Dedup defaults
	v.SetDefault("dedup.max_distance", 3)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 120)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case "memory":
		if config.Catalog.SeedFile == "" {
			return fmt.Errorf("catalog seed file is required when catalog source is 'memory'")
		}
	case "postgres":
		if config.Catalog.DatabaseURL == "" {
			return fmt.Errorf("database URL is required when catalog source is 'postgres' (set DECANTBOX_CATALOG_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("catalog source must be 'memory' or 'postgres', got: %s", config.Catalog.Source)
	}

	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	switch config.Lottery.Size {
	case 2, 5, 10:
	default:
		return fmt.Errorf("lottery size must be 2, 5 or 10 ml, got: %d", config.Lottery.Size)
	}

	if config.Lottery.MinBudget <= 0 || config.Lottery.MaxBudget < config.Lottery.MinBudget {
		return fmt.Errorf("lottery budget range is invalid: %v..%v", config.Lottery.MinBudget, config.Lottery.MaxBudget)
	}

	if config.Bundle.ExactFitTolerance < 0 {
		return fmt.Errorf("bundle exact fit tolerance must not be negative")
	}

	if config.Lottery.Tolerance < 0 || config.Lottery.CloseFit < 0 {
		return fmt.Errorf("lottery tolerance and close fit must not be negative, got: %v, %v",
			config.Lottery.Tolerance, config.Lottery.CloseFit)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("rate limit per IP must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
