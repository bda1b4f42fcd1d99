package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	JWTSecret string // Required: symmetric signing key for session tokens
	Issuer    string // Optional: issuer claim for tokens (default: stocklot)

	AccessTokenTTL  time.Duration // Optional: access token lifetime (default: 24h)
	RefreshTokenTTL time.Duration // Optional: refresh token lifetime (default: 168h)

	DatabaseFile string        // Optional: path to SQLite database file (default: ./stocklot.db)
	CacheTTL     time.Duration // Optional: default cache entry lifetime (default: 1h)

	SeedAdminPassword string // Optional: initial admin password (default: admin123)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

// ErrMissingJWTSecret aborts startup when no signing key is configured.
// Generating one silently would invalidate every token on each restart and
// hide a misconfiguration.
var ErrMissingJWTSecret = errors.New("app: JWT_SECRET is required")

func LoadConfig() (Config, error) {
	cfg := Config{
		JWTSecret:           os.Getenv("JWT_SECRET"),
		Issuer:              getEnvOrDefault("JWT_ISSUER", "stocklot"),
		AccessTokenTTL:      getEnvDurationOrDefault("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL:     getEnvDurationOrDefault("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DatabaseFile:        getEnvOrDefault("DATABASE_FILE", "stocklot.db"),
		CacheTTL:            getEnvDurationOrDefault("CACHE_TTL", time.Hour),
		SeedAdminPassword:   getEnvOrDefault("SEED_ADMIN_PASSWORD", "admin123"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if cfg.JWTSecret == "" {
		return Config{}, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
