package config

import (
	"errors"
	"time"
)

const (
	defaultStatsCacheTTL             = 5 * time.Minute
	defaultStatsPageSize             = 50
	defaultStatsMaxPages             = 1000
	defaultStatsMaxConsecutiveErrors = 5
	defaultStatsRetryInterval        = 2 * time.Second
)

type StatsConfig struct {
	CacheTTL             time.Duration `mapstructure:"cache-ttl"`
	PageSize             int           `mapstructure:"page-size"`
	MaxPages             int           `mapstructure:"max-pages"`
	MaxConsecutiveErrors int           `mapstructure:"max-consecutive-errors"`
	RetryInterval        time.Duration `mapstructure:"retry-interval"`
}

func (cfg *StatsConfig) Validate() error {
	if cfg.PageSize < 0 || cfg.MaxPages < 0 || cfg.MaxConsecutiveErrors < 0 {
		return errors.New("page-size, max-pages and max-consecutive-errors must not be negative")
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultStatsCacheTTL
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultStatsPageSize
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = defaultStatsMaxPages
	}
	if cfg.MaxConsecutiveErrors == 0 {
		cfg.MaxConsecutiveErrors = defaultStatsMaxConsecutiveErrors
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultStatsRetryInterval
	}

	return nil
}
