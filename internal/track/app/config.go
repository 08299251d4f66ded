package app

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddr string // Optional: host:port the HTTP server binds (default: :8080)

	DBDriver     string // Optional: database driver (sqlite, postgres) (default: sqlite)
	DatabaseFile string // Optional: path to SQLite database file (default: ./tally.db)
	DatabaseDSN  string // Required for postgres: connection string

	JWTSecret string // Required: HS256 secret shared with the identity provider
	Issuer    string // Required: issuer claim expected on access tokens

	InviteSecret   string        // Required: HMAC secret for invitation tokens
	InviteTTL      time.Duration // Optional: invitation lifetime (default: 7 days)
	InviteLinkBase string        // Optional: frontend URL invite links point at

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// fileConfig mirrors the optional TOML config file. Environment variables win
// over file values so deployments can override a checked-in base file.
type fileConfig struct {
	ListenAddr     string `toml:"listen_addr"`
	DBDriver       string `toml:"db_driver"`
	DatabaseFile   string `toml:"database_file"`
	DatabaseDSN    string `toml:"database_dsn"`
	Issuer         string `toml:"issuer"`
	InviteLinkBase string `toml:"invite_link_base"`
	Env            string `toml:"env"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
}

func LoadConfig() (Config, error) {
	var file fileConfig
	if path := os.Getenv("TALLY_CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &file); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		ListenAddr:           getEnvOrDefault("TALLY_LISTEN_ADDR", orDefault(file.ListenAddr, ":8080")),
		DBDriver:             getEnvOrDefault("TALLY_DB_DRIVER", orDefault(file.DBDriver, "sqlite")),
		DatabaseFile:         getEnvOrDefault("TALLY_DATABASE_FILE", orDefault(file.DatabaseFile, "tally.db")),
		DatabaseDSN:          getEnvOrDefault("TALLY_DATABASE_DSN", file.DatabaseDSN),
		JWTSecret:            os.Getenv("TALLY_JWT_SECRET"),
		Issuer:               getEnvOrDefault("TALLY_ISSUER", orDefault(file.Issuer, "tally-idp")),
		InviteSecret:         os.Getenv("TALLY_INVITE_SECRET"),
		InviteTTL:            getEnvDurationOrDefault("TALLY_INVITE_TTL", 7*24*time.Hour),
		InviteLinkBase:       getEnvOrDefault("TALLY_INVITE_LINK_BASE", file.InviteLinkBase),
		Env:                  getEnvOrDefault("ENV", orDefault(file.Env, "dev")),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", orDefault(file.LogLevel, "info")),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", orDefault(file.LogFormat, "json")),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg, nil
}

func orDefault(value, defaultValue string) string {
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

	// Try parsing as integer hours
	if hours, err := strconv.Atoi(value); err == nil {
		return time.Duration(hours) * time.Hour
	}

	return defaultValue
}
