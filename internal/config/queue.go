package config

import (
	"errors"
	"time"
)

const (
	defaultAlertQueueName      = "staking_alerts"
	defaultQueuePublishTimeout = 5 * time.Second
)

type QueueConfig struct {
	URL            string        `mapstructure:"url"`
	QueueName      string        `mapstructure:"queue-name"`
	PublishTimeout time.Duration `mapstructure:"publish-timeout"`
}

func (cfg *QueueConfig) Validate() error {
	if cfg.URL == "" {
		return errors.New("url is required")
	}

	if cfg.QueueName == "" {
		cfg.QueueName = defaultAlertQueueName
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultQueuePublishTimeout
	}

	return nil
}
