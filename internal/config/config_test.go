package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "PG_HOST", "BOT_BUDGET", "REMATCH_TIMEOUT", "BOT_THINK_MIN", "BOT_THINK_MAX", "HISTORIAN_BATCH_SIZE"} {
		t.Setenv(k, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 800*time.Millisecond, cfg.BotBudget)
	assert.Equal(t, 30*time.Second, cfg.RematchTimeout)
	assert.Equal(t, 20, cfg.HistorianBatchSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PG_HOST", "db")
	t.Setenv("POSTGRES_USER", "u")
	t.Setenv("POSTGRES_PASSWORD", "pw")
	t.Setenv("PG_PORT", "")
	t.Setenv("PG_DATABASE", "games")
	t.Setenv("REDIS_DB", "notanumber")
	t.Setenv("RECONNECT_GRACE", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "postgres://u:pw@db:5432/games", cfg.DatabaseURL)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 3*time.Second, cfg.ReconnectGrace)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("BOT_BUDGET", "fast")
	_, err := Load()
	assert.ErrorContains(t, err, "BOT_BUDGET")

	t.Setenv("BOT_BUDGET", "")
	t.Setenv("BOT_THINK_MIN", "2s")
	t.Setenv("BOT_THINK_MAX", "1s")
	_, err = Load()
	assert.Error(t, err)
}
