package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, uint64(3), cfg.Retry.MaxRetries)
	assert.Equal(t, 50*time.Millisecond, cfg.Retry.InitialInterval)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.False(t, cfg.Auth.AuthEnabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_DRIVER", "Memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://ops.example.com, https://admin.example.com,")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "10")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORE_RETRY_MAX", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, []string{"https://ops.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.True(t, cfg.Auth.AuthEnabled())
	assert.Zero(t, cfg.Retry.MaxRetries)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoadRejectsInvalidRateLimit(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_REQUESTS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "vending",
		Password: "p@ss",
		Database: "inventory",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://vending:p%40ss@db:5432/inventory?sslmode=disable", cfg.DSN())

	cfg.URL = "postgres://override/db"
	assert.Equal(t, "postgres://override/db", cfg.DSN())
}
