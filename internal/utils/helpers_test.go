package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 24.1, Round(24.0999, 1))
	assert.Equal(t, 850.0, Round(849.6, 0))
	assert.Equal(t, -0.3, Round(-0.25001, 1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-3, 0, 100))
	assert.Equal(t, 100.0, Clamp(101.2, 0, 100))
	assert.Equal(t, 42.0, Clamp(42, 0, 100))
}

func TestJitter(t *testing.T) {
	assert.Equal(t, -10.0, Jitter(0, 20))
	assert.Equal(t, 0.0, Jitter(0.5, 20))
	assert.InDelta(t, 0.25, Jitter(1, 0.5), 1e-9)
}

func TestClockString(t *testing.T) {
	ts := time.Date(2024, 3, 1, 7, 5, 9, 0, time.UTC)
	assert.Equal(t, "07:05:09", ClockString(ts))
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := NewLogger("debug", format)
		require.NoError(t, err)
		require.NotNil(t, logger)
	}
}
