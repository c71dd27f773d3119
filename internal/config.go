package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	Port     uint16
	BaseURL  string
	// SettingsPath points at the optional storefront YAML file
	SettingsPath string
	Backend      BackendConfig
	Session      SessionConfig
	Redis        RedisConfig
	Catalog      CatalogConfig
	NATS         NATSConfig
	Sentry       SentryConfig
}

// BackendConfig describes the marketplace API the storefront talks to.
type BackendConfig struct {
	URL     string
	Timeout time.Duration

	// PersistProfile sends profile edits to the marketplace with PUT
	// /api/auth/profile. When false, edits only live in the session.
	PersistProfile bool
}

// SessionConfig holds cookie and lifetime settings for visitor sessions.
type SessionConfig struct {
	TTL          time.Duration
	CookieDomain string
	SecureCookie bool
}

// RedisConfig enables the Redis session store and catalog cache when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CatalogConfig controls catalog caching.
type CatalogConfig struct {
	CacheTTL time.Duration
}

// NATSConfig enables storefront event publishing when URL is set.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	return configFromEnv()
}

func configFromEnv() (*Config, error) {
	cfg := &Config{
		Env:          getEnv("ENV", "dev"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Port:         getEnvInt("PORT", 3000),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3000"),
		SettingsPath: getEnv("STOREFRONT_SETTINGS", ""),
		Backend: BackendConfig{
			URL:            getEnv("BACKEND_URL", "http://localhost:8000"),
			Timeout:        time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 10)) * time.Second,
			PersistProfile: getEnvBool("BACKEND_PERSIST_PROFILE", false),
		},
		Session: SessionConfig{
			TTL:          time.Duration(getEnvInt("SESSION_TTL_HOURS", 72)) * time.Hour,
			CookieDomain: getEnv("COOKIE_DOMAIN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvInt("REDIS_DB", 0)),
		},
		Catalog: CatalogConfig{
			CacheTTL: time.Duration(getEnvInt("CATALOG_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		NATS: NATSConfig{
			URL:           getEnv("NATS_URL", ""),
			SubjectPrefix: getEnv("NATS_SUBJECT_PREFIX", "artesania.storefront"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Enabled:          getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			SampleRate:       getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0),
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	cfg.Session.SecureCookie = getEnvBool("COOKIE_SECURE", cfg.Env == "prod")

	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("BACKEND_URL must not be empty")
	}
	if cfg.Backend.Timeout <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT_SECONDS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
