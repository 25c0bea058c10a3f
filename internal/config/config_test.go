package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, DriverMongoDB, cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Database.ConnectRetries)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectRetryDelayDuration())
	assert.Equal(t, "https://api.clickup.com/api/v2", cfg.ClickUp.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.ClickUp.TimeoutDuration())
	assert.Equal(t, OplogDriverMemory, cfg.Oplog.Driver)
	assert.Equal(t, 100, cfg.Oplog.Capacity)
	assert.Empty(t, cfg.Sync.Schedule)
	assert.True(t, cfg.Auth.Enabled)
	assert.Empty(t, cfg.ClickUp.APIKey)
	assert.Empty(t, cfg.Integration.MakeWebhookURL)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "Postgres")
	t.Setenv("CLICKUP_APIKEY", "pk_test")
	t.Setenv("CLICKUP_LISTID", "901")
	t.Setenv("INTEGRATION_MAKEWEBHOOKURL", "https://hook.example.test/make")
	t.Setenv("OPLOG_DRIVER", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("SYNC_SCHEDULE", "0 */15 * * * *")
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("ADMIN_API_KEY", "admin")
	t.Setenv("CORS_ALLOWEDORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "pk_test", cfg.ClickUp.APIKey)
	assert.Equal(t, "901", cfg.ClickUp.ListID)
	assert.Equal(t, "https://hook.example.test/make", cfg.Integration.MakeWebhookURL)
	assert.Equal(t, OplogDriverRedis, cfg.Oplog.Driver)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.Equal(t, "0 */15 * * * *", cfg.Sync.Schedule)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "s3cret", cfg.Session.Secret)
	assert.Equal(t, "admin", cfg.ApiKey.Value)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

type mapSecrets map[string]string

func (m mapSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := m[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

func TestResolveSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.ClickUp.APIKey = "env-key"
	cfg.Redis.URL = "redis://env"

	resolveSecrets(context.Background(), mapSecrets{
		"clickup-api-key": "vault-key",
		"mongodb-uri":     "mongodb://vault",
		"session-secret":  "vault-session",
		"redis-url":       "",
	}, cfg)

	assert.Equal(t, "vault-key", cfg.ClickUp.APIKey)
	assert.Equal(t, "mongodb://vault", cfg.MongoDB.URI)
	assert.Equal(t, "vault-session", cfg.Session.Secret)
	// empty and missing secrets keep the loaded value
	assert.Equal(t, "redis://env", cfg.Redis.URL)
	assert.Empty(t, cfg.ApiKey.Value)
}
