// Package config reads the server configuration from the environment, after
// loading a .env file when one is present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds the application configuration.
type Config struct {
	Port int

	// StoreDriver picks the storage backend once, at startup.
	StoreDriver   string
	DBPath        string // sqlite file
	DatabaseURL   string // postgres connection string
	MongoURI      string
	MongoDatabase string

	// RedisAddr enables the balance cache when set.
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	BalanceCacheTTL time.Duration

	AuthSecret string
	AuthIssuer string

	// AllowedOrigins are the CORS and websocket origin patterns.
	AllowedOrigins []string
}

// Load reads the configuration. It fails on malformed values and on settings
// the chosen driver needs but lacks.
func Load() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	ttl, err := time.ParseDuration(getEnv("BALANCE_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid BALANCE_CACHE_TTL: %w", err)
	}

	cfg := &Config{
		Port:            port,
		StoreDriver:     strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		DBPath:          getEnv("DB_PATH", "./data/hisab.db"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "hisab"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,
		BalanceCacheTTL: ttl,
		AuthSecret:      os.Getenv("AUTH_SECRET"),
		AuthIssuer:      os.Getenv("AUTH_ISSUER"),
		AllowedOrigins:  splitList(getEnv("ALLOWED_ORIGINS", "*")),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required for the %s driver", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required")
	}
	if c.BalanceCacheTTL <= 0 {
		return fmt.Errorf("BALANCE_CACHE_TTL must be positive")
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
