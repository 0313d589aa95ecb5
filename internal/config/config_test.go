package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 720*time.Hour, cfg.Security.TokenTTL)
	assert.Equal(t, 336*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, "sid", cfg.Security.SessionCookie)
	assert.False(t, cfg.Security.StrictBearer)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GADO_ENVIRONMENT", "production")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
}
