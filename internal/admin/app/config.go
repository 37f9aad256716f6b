package app

import (
	"errors"
	"os"
	"strconv"
	"time"
)

type Config struct {
	AdminUsername string // Required: administrator login name
	AdminPassword string // Required: plaintext secret or PHC-encoded Argon2id hash
	TOTPSecret    string // Optional: base32 secret enabling the authenticator factor

	DatabaseFile         string        // Optional: path to SQLite database file (default: ./novelsite.db)
	PepperFile           string        // Optional: path to file containing pepper for password hashing (default: ./pepper)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Idle-session sweep interval (default: 15m)
	SessionIdleTimeout   time.Duration // Session idle timeout (default: 30m)
}

func LoadConfig() Config {
	return Config{
		AdminUsername: os.Getenv("ADMIN_USERNAME"),
		AdminPassword: firstNonEmpty(
			os.Getenv("ADMIN_PASSWORD_HASH"),
			os.Getenv("ADMIN_PASSWORD"),
		),
		TOTPSecret: os.Getenv("ADMIN_TOTP_SECRET"),

		DatabaseFile:         getEnvOrDefault("DATABASE_FILE", "novelsite.db"),
		PepperFile:           getEnvOrDefault("PEPPER_FILE", "pepper"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 15*time.Minute),
		SessionIdleTimeout:   getEnvDurationOrDefault("SESSION_IDLE_TIMEOUT", 30*time.Minute),
	}
}

// Validate rejects configurations the service cannot run with. The admin
// credential has no in-database fallback, so missing values are fatal.
func (c Config) Validate() error {
	if c.AdminUsername == "" {
		return errors.New("ADMIN_USERNAME is required")
	}
	if c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
