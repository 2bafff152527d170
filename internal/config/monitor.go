package config

import (
	"errors"
	"time"
)

const (
	defaultPollInterval       = 10 * time.Second
	defaultThresholdFiat      = 10000
	defaultPageSize           = 50
	defaultFetchAttempts      = 3
	defaultFetchRetryInterval = 2 * time.Second
	defaultDigestCapacity     = 1000
)

type MonitorConfig struct {
	PollInterval       time.Duration `mapstructure:"poll-interval"`
	ThresholdFiat      float64       `mapstructure:"threshold-fiat"`
	PageSize           int           `mapstructure:"page-size"`
	FetchAttempts      uint          `mapstructure:"fetch-attempts"`
	FetchRetryInterval time.Duration `mapstructure:"fetch-retry-interval"`
	DigestCapacity     int           `mapstructure:"digest-capacity"`
}

func (cfg *MonitorConfig) Validate() error {
	if cfg.ThresholdFiat < 0 {
		return errors.New("threshold-fiat must not be negative")
	}
	if cfg.PageSize < 0 {
		return errors.New("page-size must not be negative")
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.ThresholdFiat == 0 {
		cfg.ThresholdFiat = defaultThresholdFiat
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.FetchAttempts == 0 {
		cfg.FetchAttempts = defaultFetchAttempts
	}
	if cfg.FetchRetryInterval <= 0 {
		cfg.FetchRetryInterval = defaultFetchRetryInterval
	}
	if cfg.DigestCapacity <= 0 {
		cfg.DigestCapacity = defaultDigestCapacity
	}

	return nil
}
