package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Issuer string // Issuer claim for session tokens

	DatabaseFile         string // Path to the council SQLite database file
	IdentityDatabaseFile string // Path to the identity provider's own database file

	// Optional bootstrap admin. When set and no profiles exist yet, an
	// admin account is provisioned at startup so the service is usable
	// on a fresh database.
	AdminEmail    string
	AdminPassword string

	Env                 string        // Environment (dev, staging, prod)
	LogLevel            string        // debug, info, warn, error
	LogFormat           string        // json, text
	Port                int           // HTTP server port
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:               getEnvOrDefault("COUNCIL_ISSUER", "council-accounts"),
		DatabaseFile:         getEnvOrDefault("COUNCIL_DATABASE_FILE", "council.db"),
		IdentityDatabaseFile: getEnvOrDefault("COUNCIL_IDENTITY_DATABASE_FILE", "identity.db"),
		AdminEmail:           os.Getenv("COUNCIL_ADMIN_EMAIL"),
		AdminPassword:        os.Getenv("COUNCIL_ADMIN_PASSWORD"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
	return cfg
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
