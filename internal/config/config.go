package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables. It is the single source of truth for runtime parameters.
type Config struct {
	Port     string
	Env      string
	AdminKey string

	// StoreDriver selects the persistence backend: "postgres" or "memory".
	StoreDriver string

	// FloorRatio is the fraction of wholesale cost below which a retail
	// price is rejected. 0.5 permits loss-leader pricing down to half of
	// wholesale.
	FloorRatio float64

	// RankingPolicy selects the ranking engine: "sales" or "weighted".
	RankingPolicy string

	DB     DatabaseConfig
	Redis  RedisConfig
	Worker WorkerConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters. An empty Host disables
// the cache entirely.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	StatsInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.AdminKey = getEnv("ADMIN_API_KEY", "")
	cfg.StoreDriver = getEnv("STORE_DRIVER", "postgres")
	cfg.RankingPolicy = getEnv("RANKING_POLICY", "sales")

	// Price floor
	ratio, err := parseFloatEnv("FLOOR_RATIO", "0.5")
	if err != nil {
		return nil, fmt.Errorf("invalid FLOOR_RATIO: %w", err)
	}
	cfg.FloorRatio = ratio

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis (optional)
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", ""),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Workers (durations)
	if cfg.Worker.StatsInterval, err = parseDurationEnv("STATS_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid STATS_INTERVAL: %w", err)
	}

	switch cfg.StoreDriver {
	case "postgres":
		if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
			return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
		}
	case "memory":
		// No backing services required.
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q: must be 'postgres' or 'memory'", cfg.StoreDriver)
	}

	if cfg.AdminKey == "" {
		return nil, errors.New("ADMIN_API_KEY must be set for orchestrator authentication")
	}

	if cfg.FloorRatio <= 0 || cfg.FloorRatio > 1 {
		return nil, fmt.Errorf("FLOOR_RATIO must be in (0, 1], got %v", cfg.FloorRatio)
	}

	if cfg.RankingPolicy != "sales" && cfg.RankingPolicy != "weighted" {
		return nil, fmt.Errorf("unknown RANKING_POLICY %q: must be 'sales' or 'weighted'", cfg.RankingPolicy)
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseFloatEnv reads an environment variable and parses it as a float64,
// falling back to the provided default when unset.
func parseFloatEnv(key, def string) (float64, error) {
	return strconv.ParseFloat(getEnv(key, def), 64)
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
