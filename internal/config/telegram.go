package config

import (
	"errors"
	"time"
)

const (
	defaultExplorerTxURL     = "https://suiscan.xyz/mainnet/tx/"
	defaultDeliveryAttempts  = 3
	defaultDefaultRetryAfter = 3 * time.Second
	defaultRetryMargin       = 1 * time.Second
)

type TelegramConfig struct {
	BotToken string `mapstructure:"bot-token"`
	// APIEndpoint overrides the Bot API endpoint format, e.g. https://api.telegram.org/bot%s/%s
	APIEndpoint      string        `mapstructure:"api-endpoint"`
	ExplorerTxURL    string        `mapstructure:"explorer-tx-url"`
	DeliveryAttempts uint          `mapstructure:"delivery-attempts"`
	DefaultRetryWait time.Duration `mapstructure:"default-retry-wait"`
	RetryMargin      time.Duration `mapstructure:"retry-margin"`
}

func (cfg *TelegramConfig) Validate() error {
	if cfg.BotToken == "" {
		return errors.New("bot-token is required")
	}

	if cfg.ExplorerTxURL == "" {
		cfg.ExplorerTxURL = defaultExplorerTxURL
	}
	if cfg.DeliveryAttempts == 0 {
		cfg.DeliveryAttempts = defaultDeliveryAttempts
	}
	if cfg.DefaultRetryWait <= 0 {
		cfg.DefaultRetryWait = defaultDefaultRetryAfter
	}
	if cfg.RetryMargin <= 0 {
		cfg.RetryMargin = defaultRetryMargin
	}

	return nil
}
