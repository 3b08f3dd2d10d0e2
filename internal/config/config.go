package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string

	// JWT
	JWTSecret          string
	JWTExpirationHours int

	// Storage (payment receipts)
	StoragePath string

	// Background Workers
	WorkerCount int

	// Leads: days without activity before the abandonment sweep closes a lead
	LeadAbandonDays int

	// CORS
	AllowedOrigins []string

	// Sentry
	SentryDSN string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:               envString("PORT", "8080"),
		Environment:        envString("ENVIRONMENT", "development"),
		DatabaseURL:        envString("DATABASE_URL", ""),
		JWTSecret:          envString("JWT_SECRET", ""),
		JWTExpirationHours: envInt("JWT_EXPIRATION_HOURS", 24),
		StoragePath:        envString("STORAGE_PATH", "./storage"),
		WorkerCount:        envInt("WORKER_COUNT", 5),
		LeadAbandonDays:    envInt("LEAD_ABANDON_DAYS", 30),
		AllowedOrigins:     envSlice("ALLOWED_ORIGINS", []string{"*"}),
		SentryDSN:          envString("SENTRY_DSN", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		if cfg.Environment == "production" {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-in-production"
	}
	if cfg.LeadAbandonDays < 1 {
		return nil, fmt.Errorf("LEAD_ABANDON_DAYS must be at least 1")
	}

	return cfg, nil
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	raw := envString(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func envSlice(key string, fallback []string) []string {
	raw := envString(key, "")
	if raw == "" {
		return fallback
	}
	return strings.Split(raw, ",")
}
