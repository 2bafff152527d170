package config

import (
	"errors"
	"time"
)

const (
	defaultPriceBaseURL    = "https://api.coingecko.com/api/v3"
	defaultPriceVsCurrency = "usd"
	defaultPriceTimeout    = 5 * time.Second
	defaultPriceCacheTTL   = 30 * time.Second
)

type PriceConfig struct {
	BaseURL    string        `mapstructure:"base-url"`
	CoinID     string        `mapstructure:"coin-id"`
	VsCurrency string        `mapstructure:"vs-currency"`
	APIKey     string        `mapstructure:"api-key"`
	Timeout    time.Duration `mapstructure:"timeout"`
	CacheTTL   time.Duration `mapstructure:"cache-ttl"`
}

func (cfg *PriceConfig) Validate() error {
	if cfg.CoinID == "" {
		return errors.New("coin-id is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultPriceBaseURL
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = defaultPriceVsCurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPriceTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultPriceCacheTTL
	}

	return nil
}
