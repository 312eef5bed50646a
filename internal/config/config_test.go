package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t, "APP_ENV", "PORT", "BASE_URL", "KAFKA_BROKERS", "COMMISSION_SYNC_INTERVAL", "JWT_TTL", "MT5_LISTEN_PORT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "http://localhost:7000", cfg.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.IsProduction())
	assert.Nil(t, cfg.Brokers())
}

func TestLoadOverrides(t *testing.T) {
	unsetEnv(t, "BASE_URL", "MT5_LISTEN_PORT")
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8080")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("COMMISSION_SYNC_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Brokers())
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	unsetEnv(t, "PORT", "MT5_LISTEN_PORT")
	t.Setenv("APP_ENV", "staging")

	_, err := Load()
	assert.Error(t, err)
}

func TestClientBaseURLResolution(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ClientConfig
		expect string
	}{
		{"explicit base url", ClientConfig{APIBaseURL: "https://ib.example.com/api/", APIOrigin: "https://admin.example.com"}, "https://ib.example.com/api"},
		{"same origin", ClientConfig{APIOrigin: "https://admin.example.com/"}, "https://admin.example.com/api"},
		{"fallback", ClientConfig{}, FallbackAPIBaseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.cfg.BaseURL())
		})
	}
}

func TestClientRequestTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, (&ClientConfig{Env: EnvDevelopment}).RequestTimeout())
	assert.Equal(t, 60*time.Second, (&ClientConfig{Env: EnvProduction}).RequestTimeout())
}

func TestLoadClient(t *testing.T) {
	unsetEnv(t, "APP_ENV", "IB_API_BASE_URL", "COMMISSION_SYNC_INTERVAL")
	t.Setenv("IB_API_ORIGIN", "http://localhost:7000")
	t.Setenv("IBCTL_STORE", t.TempDir())

	cfg, err := LoadClient()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:7000/api", cfg.BaseURL())
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
}
