package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ModeRelease, cfg.Mode)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(1), cfg.NodeID)
	assert.Equal(t, "admin@example.com", cfg.AdminEmail)
	assert.Empty(t, cfg.MetricsToken)
	assert.False(t, cfg.IsDebug())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("NODE_ID", "7")
	t.Setenv("METRICS_TOKEN", "scrape")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, int64(7), cfg.NodeID)
	assert.Equal(t, "scrape", cfg.MetricsToken)
}

func TestFromEnv_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)

	t.Setenv("APP_MODE", ModeDebug)
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.True(t, cfg.IsDebug())
}

func TestFromEnv_UnsupportedDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := FromEnv()
	assert.Error(t, err)
}
