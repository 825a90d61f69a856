package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "")
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultHTTPAddr, cfg.App.HTTPAddr)
	assert.Equal(t, DefaultTickInterval, cfg.App.TickInterval)
	assert.Equal(t, 20, cfg.App.HistoryCapacity)
	assert.Equal(t, int64(100), cfg.Redis.StreamMaxLen)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestFromViper_Env(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":8080")
	t.Setenv("TICK_INTERVAL", "5s")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("MQTT_BROKER", "tcp://localhost:1883")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, 5*time.Second, cfg.App.TickInterval)
	assert.Equal(t, int64(42), cfg.App.RandomSeed)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestFromViper_InvalidTickFallsBack(t *testing.T) {
	for _, raw := range []string{"soon", "200ms"} {
		t.Run(raw, func(t *testing.T) {
			v := viper.New()
			v.Set("TICK_INTERVAL", raw)
			cfg, err := FromViper(v)
			require.Error(t, err)
			require.NotNil(t, cfg)
			assert.Equal(t, DefaultTickInterval, cfg.App.TickInterval)
		})
	}
}
