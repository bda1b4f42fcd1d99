package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "test-secret", cfg.JWTSecret)
	require.Equal(t, "stocklot", cfg.Issuer)
	require.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	require.Equal(t, "stocklot.db", cfg.DatabaseFile)
	require.Equal(t, time.Hour, cfg.CacheTTL)
	require.Equal(t, "admin123", cfg.SeedAdminPassword)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 10*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "custom")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("DATABASE_FILE", "/tmp/custom.db")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "custom", cfg.Issuer)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	require.Equal(t, "/tmp/custom.db", cfg.DatabaseFile)
	require.Equal(t, 9090, cfg.Port)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadConfigBadValuesFallBack(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("ACCESS_TOKEN_TTL", "soon")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
}
