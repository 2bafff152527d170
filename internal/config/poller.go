package config

import (
	"time"
)

const (
	defaultStatsPollingInterval        = 5 * time.Minute
	defaultSubscriptionPollingInterval = 1 * time.Minute
)

type PollerConfig struct {
	// StatsPollingInterval controls how often lifetime stats are recomputed in the background.
	StatsPollingInterval time.Duration `mapstructure:"stats-polling-interval"`
	// DisableStatsPoller turns the background refresh off; stats are then computed on demand only.
	DisableStatsPoller bool `mapstructure:"disable-stats-poller"`
	// SubscriptionPollingInterval controls how often running sessions are
	// reconciled with the subscription store.
	SubscriptionPollingInterval time.Duration `mapstructure:"subscription-polling-interval"`
}

func (cfg *PollerConfig) Validate() error {
	if cfg.StatsPollingInterval <= 0 {
		cfg.StatsPollingInterval = defaultStatsPollingInterval
	}
	if cfg.SubscriptionPollingInterval <= 0 {
		cfg.SubscriptionPollingInterval = defaultSubscriptionPollingInterval
	}

	return nil
}
