package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "APP_ENV", "DATABASE_URL", "JWT_SECRET", "CORS_ORIGINS",
		"REFERENCE_TZ", "WRITE_DEBOUNCE", "CATALOG_PATH", "DISABLED_ACHIEVEMENTS",
		"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"RATE_LIMIT_MAX_REQUESTS", "RATE_LIMIT_WINDOW_MS", "AUTH_RATE_LIMIT_MAX", "AUTH_RATE_LIMIT_WINDOW_MS",
	} {
		t.Setenv(key, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.AppEnv)
	assert.Equal(t, 2*time.Second, cfg.WriteDebounce)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=discjourney sslmode=disable", cfg.DatabaseURL)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, RateLimit{Max: 100, Window: 15 * time.Minute}, cfg.GeneralLimit)
	assert.Equal(t, RateLimit{Max: 5, Window: 5 * time.Minute}, cfg.AuthLimit)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db/disc")
	t.Setenv("WRITE_DEBOUNCE", "750ms")
	t.Setenv("REFERENCE_TZ", "Europe/Helsinki")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db/disc", cfg.DatabaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.WriteDebounce)
	assert.Equal(t, "Europe/Helsinki", cfg.ReferenceTZ)
}

func TestFromEnvBadDebounce(t *testing.T) {
	clearEnv(t)
	t.Setenv("WRITE_DEBOUNCE", "soon")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFromEnvRateLimits(t *testing.T) {
	clearEnv(t)
	t.Setenv("AUTH_RATE_LIMIT_MAX", "20")
	t.Setenv("AUTH_RATE_LIMIT_WINDOW_MS", "60000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, RateLimit{Max: 20, Window: time.Minute}, cfg.AuthLimit)

	t.Setenv("RATE_LIMIT_MAX_REQUESTS", "-1")
	_, err = FromEnv()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	cfg := &Config{JWTSecret: ""}
	_, err := cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.JWTSecret = "short"
	_, err = cfg.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.JWTSecret = testSecret
	warnings, err := cfg.Validate()
	require.NoError(t, err)
	assert.Empty(t, warnings)

	cfg.AppEnv = EnvProduction
	cfg.CORSOrigins = defaultCORSOrigins
	cfg.DatabaseURL = "host=db sslmode=disable"
	warnings, err = cfg.Validate()
	require.NoError(t, err)
	assert.Len(t, warnings, 2)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set, even empty.
	require.NoError(t, os.Unsetenv("CATALOG_PATH"))
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CATALOG_PATH=/srv/catalog.yaml\n"), 0o600))

	assert.False(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.True(t, LoadDotEnv(path))
	assert.Equal(t, "/srv/catalog.yaml", os.Getenv("CATALOG_PATH"))
}
