package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: sms-ride-workers
  port: 4000
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    port: 5432
    database: rides
    user: rides
  redis:
    address: localhost:6379
apis:
  gmaps:
    api_key: gmaps-api-key
    cache_ttl: 600
  lyft:
    base_url: http://localhost:3000
workers:
  parse-sms-message:
    enabled: true
    max_jobs_active: 8
  request-ride:
    enabled: false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile_Success(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "sms-ride-workers", cfg.App.Name)
	assert.Equal(t, ":4000", cfg.App.Addr())
	assert.Equal(t, "localhost:26500", cfg.Camunda.BrokerAddress)
	assert.Equal(t, "gmaps-api-key", cfg.APIs.GMaps.APIKey)
	assert.Equal(t, 600, cfg.APIs.GMaps.CacheTTL)
	assert.Equal(t, "http://localhost:3000", cfg.APIs.Lyft.BaseURL)

	assert.True(t, cfg.Workers["parse-sms-message"].Enabled)
	assert.Equal(t, 8, cfg.Workers["parse-sms-message"].MaxJobsActive)
	assert.False(t, IsWorkerEnabled(cfg, "request-ride"))
	assert.True(t, IsWorkerEnabled(cfg, "estimate-ride"))
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://maps.googleapis.com/maps/api", cfg.APIs.GMaps.BaseURL)
	assert.Equal(t, 10000, cfg.APIs.GMaps.Timeout)
	assert.Equal(t, "lyft_line", cfg.APIs.Lyft.DefaultRideType)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 86400, cfg.App.SessionTTL)
	assert.Equal(t, 30000, cfg.Workers["parse-sms-message"].Timeout)
	assert.Equal(t, 3, cfg.Workers["parse-sms-message"].MaxRetries)
}

func TestLoadFromFile_EnvironmentFallbacks(t *testing.T) {
	t.Setenv("GMAPS_API_KEY", "from-env")
	t.Setenv("LYFT_RIDE_SERVICE", "http://ride-service:3000")
	t.Setenv("SESS_SECRET", "secret")
	t.Setenv("PORT", "3005")

	content := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    url: postgres://rides@localhost/rides
  redis:
    address: localhost:6379
`
	cfg, err := LoadFromFile(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.APIs.GMaps.APIKey)
	assert.Equal(t, "http://ride-service:3000", cfg.APIs.Lyft.BaseURL)
	assert.Equal(t, "secret", cfg.App.SessionSecret)
	assert.Equal(t, 3005, cfg.App.Port)
	assert.Equal(t, "postgres://rides@localhost/rides", cfg.Database.Postgres.GetDSN())
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("TEST_GMAPS_KEY", "expanded-key")

	content := `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    url: postgres://rides@localhost/rides
  redis:
    address: localhost:6379
apis:
  gmaps:
    api_key: ${TEST_GMAPS_KEY}
  lyft:
    base_url: http://localhost:3000
`
	cfg, err := LoadFromFile(writeConfig(t, content))
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.APIs.GMaps.APIKey)
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing broker",
			content: "database:\n  redis:\n    address: localhost:6379\n",
			errMsg:  "camunda.broker_address is required",
		},
		{
			name:    "missing postgres host",
			content: "camunda:\n  broker_address: x\n",
			errMsg:  "database.postgres.host is required",
		},
		{
			name: "missing redis",
			content: "camunda:\n  broker_address: x\ndatabase:\n  postgres:\n    url: postgres://x\n",
			errMsg:  "database.redis.address is required",
		},
		{
			name: "missing gmaps key",
			content: "camunda:\n  broker_address: x\ndatabase:\n  postgres:\n    url: postgres://x\n  redis:\n    address: r\n",
			errMsg:  "apis.gmaps.api_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGetWorkerConfig_Fallback(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{}}
	wc := GetWorkerConfig(cfg, "send-sms-reply")
	assert.True(t, wc.Enabled)
	assert.Equal(t, 5, wc.MaxJobsActive)
	assert.Equal(t, 30*time.Second, GetDuration(wc.Timeout))
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "rides", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=rides sslmode=disable", p.GetDSN())
}
