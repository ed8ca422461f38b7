package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_DevelopmentDefaults(t *testing.T) {
	t.Setenv("ENV", "development")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "memory", cfg.SessionStore)
	assert.Equal(t, "local", cfg.AnalyticsSource)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, cfg.AuthURL, cfg.AuthExternalURL)
	assert.False(t, cfg.IsSecure())
	assert.False(t, cfg.ZendeskEnabled())
}

func TestNewConfig_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("API_CLIENT_SECRET", "")
	t.Setenv("SYSTEM_CLIENT_SECRET", "")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_CLIENT_SECRET")

	t.Setenv("API_CLIENT_SECRET", "client-secret")
	t.Setenv("SYSTEM_CLIENT_SECRET", "system-secret")

	cfg, err := NewConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsSecure())
}

func TestNewConfig_RejectsUnknownStores(t *testing.T) {
	t.Setenv("ENV", "development")

	t.Setenv("SESSION_STORE", "memcached")
	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_STORE")

	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("ANALYTICS_SOURCE", "s3")
	t.Setenv("ANALYTICS_BUCKET", "")
	_, err = NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYTICS_BUCKET")
}

func TestNewConfig_TrimsTrailingSlashes(t *testing.T) {
	t.Setenv("ENV", "development")
	t.Setenv("INCENTIVES_API_URL", "https://incentives.example/")
	t.Setenv("HMPPS_AUTH_EXTERNAL_URL", "https://sign-in.example/auth/")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://incentives.example", cfg.IncentivesAPIURL)
	assert.Equal(t, "https://sign-in.example/auth", cfg.AuthExternalURL)
}
