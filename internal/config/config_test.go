package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsNeedSecret(t *testing.T) {
	t.Setenv("LEDGER_CONFIG", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
service_name: ledger-from-file
storage:
  driver: memory
http:
  port: "8181"
  timeout: 10s
auth:
  jwt_secret: from-file
  token_ttl: 1h
reports:
  timezone: UTC
kafka:
  brokers: [kafka-1:9092]
`), 0o600))

	t.Setenv("LEDGER_CONFIG", path)
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ledger-from-file", cfg.ServiceName)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "9191", cfg.HTTP.Port)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 90*time.Second, cfg.Redis.CacheTTL)
	assert.Equal(t, 0, cfg.HTTP.RateLimit)
	assert.Equal(t, time.Minute, cfg.HTTP.RateWindow)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("LEDGER_CONFIG", "")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("JWT_TTL", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_TTL")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Auth.JWTSecret = "s"
	require.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "mongo"
	cfg.Reports.Timezone = "Mars/Olympus"
	cfg.HTTP.Port = "0"
	cfg.Kafka.ConsumerEnabled = true
	cfg.HTTP.RateWindow = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage driver")
	assert.Contains(t, err.Error(), "timezone")
	assert.Contains(t, err.Error(), "http port")
	assert.Contains(t, err.Error(), "broker")
	assert.Contains(t, err.Error(), "rate limit window")
}
