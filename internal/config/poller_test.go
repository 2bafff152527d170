package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerConfig_Validate(t *testing.T) {
	t.Run("stats polling interval set", func(t *testing.T) {
		cfg := &PollerConfig{
			StatsPollingInterval: 3 * time.Minute,
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, 3*time.Minute, cfg.StatsPollingInterval)
	})

	t.Run("stats polling interval not set - should use default", func(t *testing.T) {
		cfg := &PollerConfig{
			StatsPollingInterval: 0, // not set
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, defaultStatsPollingInterval, cfg.StatsPollingInterval)
		assert.Equal(t, 5*time.Minute, cfg.StatsPollingInterval)
	})

	t.Run("stats polling interval negative - should use default", func(t *testing.T) {
		cfg := &PollerConfig{
			StatsPollingInterval: -1 * time.Minute, // negative
		}
		err := cfg.Validate()
		require.NoError(t, err)
		assert.Equal(t, defaultStatsPollingInterval, cfg.StatsPollingInterval)
	})

	t.Run("subscription polling interval defaults to a minute", func(t *testing.T) {
		cfg := &PollerConfig{}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, time.Minute, cfg.SubscriptionPollingInterval)
	})
}

func TestMonitorConfig_Validate(t *testing.T) {
	t.Run("negative threshold - should error", func(t *testing.T) {
		cfg := &MonitorConfig{ThresholdFiat: -1}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "threshold-fiat must not be negative")
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		cfg := &MonitorConfig{
			PollInterval:       time.Minute,
			ThresholdFiat:      5,
			PageSize:           20,
			FetchAttempts:      5,
			FetchRetryInterval: time.Second,
			DigestCapacity:     10,
		}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, time.Minute, cfg.PollInterval)
		assert.Equal(t, 20, cfg.PageSize)
		assert.Equal(t, uint(5), cfg.FetchAttempts)
		assert.Equal(t, 10, cfg.DigestCapacity)
	})
}
