// config/config.go - Environment configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	minJWTSecretLength = 32
	defaultPort        = "3000"
	defaultCORSOrigins = "http://localhost:3000"
	defaultDebounce    = 2 * time.Second
)

// RateLimit is a request budget per client IP.
type RateLimit struct {
	Max    int
	Window time.Duration
}

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Port        string
	AppEnv      string
	DatabaseURL string
	JWTSecret   string
	CORSOrigins string

	// ReferenceTZ is the zone leaderboard periods roll over in.
	ReferenceTZ   string
	WriteDebounce time.Duration

	CatalogPath          string
	DisabledAchievements string

	GeneralLimit RateLimit
	AuthLimit    RateLimit
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// LoadDotEnv loads .env into the process environment. A missing file is
// not an error; the returned bool reports whether one was found.
func LoadDotEnv(files ...string) bool {
	return godotenv.Load(files...) == nil
}

// FromEnv reads the configuration from environment variables.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", defaultPort),
		AppEnv:               getEnvOrDefault("APP_ENV", EnvDevelopment),
		DatabaseURL:          DatabaseDSN(),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		CORSOrigins:          getEnvOrDefault("CORS_ORIGINS", defaultCORSOrigins),
		ReferenceTZ:          os.Getenv("REFERENCE_TZ"),
		WriteDebounce:        defaultDebounce,
		CatalogPath:          os.Getenv("CATALOG_PATH"),
		DisabledAchievements: os.Getenv("DISABLED_ACHIEVEMENTS"),
	}

	if raw := os.Getenv("WRITE_DEBOUNCE"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: WRITE_DEBOUNCE %q: %v", ErrInvalidConfig, raw, err)
		}
		cfg.WriteDebounce = d
	}

	var err error
	if cfg.GeneralLimit, err = rateLimitFromEnv("RATE_LIMIT_MAX_REQUESTS", "RATE_LIMIT_WINDOW_MS", 100, 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.AuthLimit, err = rateLimitFromEnv("AUTH_RATE_LIMIT_MAX", "AUTH_RATE_LIMIT_WINDOW_MS", 5, 5*time.Minute); err != nil {
		return nil, err
	}
	return cfg, nil
}

func rateLimitFromEnv(maxKey, windowKey string, max int, window time.Duration) (RateLimit, error) {
	limit := RateLimit{Max: max, Window: window}
	if raw := os.Getenv(maxKey); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return limit, fmt.Errorf("%w: %s %q", ErrInvalidConfig, maxKey, raw)
		}
		limit.Max = n
	}
	if raw := os.Getenv(windowKey); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			return limit, fmt.Errorf("%w: %s %q", ErrInvalidConfig, windowKey, raw)
		}
		limit.Window = time.Duration(ms) * time.Millisecond
	}
	return limit, nil
}

// Validate checks for settings the server cannot run without. It returns
// warnings for settings that are merely suspicious.
func (c *Config) Validate() ([]string, error) {
	if c.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET must be set. Generate one with: openssl rand -base64 64", ErrInvalidConfig)
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return nil, fmt.Errorf("%w: JWT_SECRET must be at least %d characters long", ErrInvalidConfig, minJWTSecretLength)
	}
	if c.WriteDebounce < 0 {
		return nil, fmt.Errorf("%w: WRITE_DEBOUNCE must not be negative", ErrInvalidConfig)
	}

	var warnings []string
	if c.IsProduction() {
		if c.CORSOrigins == "" || c.CORSOrigins == defaultCORSOrigins {
			warnings = append(warnings, "CORS_ORIGINS not properly configured for production")
		}
		if strings.Contains(c.DatabaseURL, "sslmode=disable") {
			warnings = append(warnings, "database connection has TLS disabled")
		}
	}
	return warnings, nil
}

// DatabaseDSN returns DATABASE_URL, or a DSN assembled from the DB_*
// variables when it is unset.
func DatabaseDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "")
	dbname := getEnvOrDefault("DB_NAME", "discjourney")
	sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
