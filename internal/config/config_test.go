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
	assert.Equal(t, "TD", cfg.Diagram.Direction)
	assert.True(t, cfg.Diagram.ShowLanes)
	assert.Equal(t, 28, cfg.Diagram.LabelWidth)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_HOST", "127.0.0.1")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DIAGRAM_DIRECTION", "LR")
	t.Setenv("DIAGRAM_SHOW_LANES", "false")
	t.Setenv("RACI_LOCALE", "fr")
	t.Setenv("PROPOSAL_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr())
	assert.Equal(t, "LR", cfg.Diagram.Direction)
	assert.False(t, cfg.Diagram.ShowLanes)
	assert.Equal(t, "fr", cfg.Raci.Locale)
	assert.Equal(t, 60, cfg.Proposal.TimeoutSeconds, "malformed numbers fall back")
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}

func TestTTL(t *testing.T) {
	assert.Equal(t, 90*time.Second, TTL(90))
	assert.Zero(t, TTL(0))
	assert.Zero(t, TTL(-5))
}
