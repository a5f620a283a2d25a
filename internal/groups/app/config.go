package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer        string // Optional: issuer claim for session tokens (default: nichenest-groups)
	SessionSecret string // Optional: HMAC secret for session tokens (random per boot when unset)
	SessionTTL    time.Duration

	DatabaseFile          string        // Optional: path to SQLite database file (default: ./groups.db)
	Env                   string        // Environment (dev, staging, prod) (default: dev)
	LogLevel              string        // Log level (debug, info, warn, error) (default: info)
	LogFormat             string        // Log format (json, text) (default: json)
	Port                  int           // HTTP server port (default: 8080)
	ShutdownGracePeriod   time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval  time.Duration // Housekeeping interval (default: 1h)
	HousekeepingRetention time.Duration // How long resolved rows are kept (default: 30 days)
}

func LoadConfig() Config {
	return Config{
		Issuer:                getEnvOrDefault("GROUPS_ISSUER", "nichenest-groups"),
		SessionSecret:         os.Getenv("GROUPS_SESSION_SECRET"),
		SessionTTL:            getEnvDurationOrDefault("GROUPS_SESSION_TTL", 24*time.Hour),
		DatabaseFile:          getEnvOrDefault("GROUPS_DATABASE_FILE", "groups.db"),
		Env:                   getEnvOrDefault("ENV", "dev"),
		LogLevel:              getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:             getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                  getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:   getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval:  getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Hour),
		HousekeepingRetention: getEnvDurationOrDefault("HOUSEKEEPING_RETENTION", 30*24*time.Hour),
	}
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
