package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Port                string
	Storage             string
	DatabaseURL         string
	DBDriver            string
	RedisAddr           string
	RedisTTL            time.Duration
	KafkaBrokers        []string
	KafkaTopic          string
	LogLevel            slog.Level
	OverdraftProtection bool
}

// Load reads an optional .env file, then the environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Storage:     strings.ToLower(getEnv("STORAGE", StorageMemory)),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		RedisAddr:   getEnv("REDIS_ADDR", ""),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "transaction_completed"),
	}

	var err error
	if cfg.RedisTTL, err = time.ParseDuration(getEnv("REDIS_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("REDIS_TTL: %w", err)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.OverdraftProtection, err = strconv.ParseBool(getEnv("LEDGER_OVERDRAFT_PROTECTION", "false")); err != nil {
		return nil, fmt.Errorf("LEDGER_OVERDRAFT_PROTECTION: %w", err)
	}
	for _, b := range strings.Split(getEnv("KAFKA_BROKERS", ""), ",") {
		if b = strings.TrimSpace(b); b != "" {
			cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE=postgres")
		}
		if c.DBDriver != "postgres" && c.DBDriver != "pgx" {
			return fmt.Errorf("DB_DRIVER must be postgres or pgx, got %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("STORAGE must be memory or postgres, got %q", c.Storage)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Port)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
