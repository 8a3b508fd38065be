package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.SnapshotCacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.Warnings())
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_ShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "kisa")

	_, err := Load()
	require.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	_, err := Load()
	require.ErrorContains(t, err, "APP_TIMEZONE")
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{CORSOrigins: " https://a.example.com, ,https://b.example.com "}
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOriginList())
}

func TestWarnings_ProductionValues(t *testing.T) {
	cfg := &Config{
		DatabaseDSN: "host=db user=app dbname=restoran",
		CORSOrigins: "https://panel.example.com",
		RedisURL:    "redis://cache:6379/0",
	}
	assert.Empty(t, cfg.Warnings())
}
