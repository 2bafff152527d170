package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Sui      SuiConfig      `mapstructure:"sui"`
	Price    PriceConfig    `mapstructure:"price"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Stats    StatsConfig    `mapstructure:"stats"`
	Poller   PollerConfig   `mapstructure:"poller"`
	Db       DbConfig       `mapstructure:"db"`
	Redis    *RedisConfig   `mapstructure:"redis"`
	Queue    *QueueConfig   `mapstructure:"queue"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

func (cfg *Config) Validate() error {
	if err := cfg.Sui.Validate(); err != nil {
		return fmt.Errorf("sui: %w", err)
	}

	if err := cfg.Price.Validate(); err != nil {
		return fmt.Errorf("price: %w", err)
	}

	if err := cfg.Telegram.Validate(); err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	if err := cfg.Monitor.Validate(); err != nil {
		return fmt.Errorf("monitor: %w", err)
	}

	if err := cfg.Stats.Validate(); err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	if err := cfg.Poller.Validate(); err != nil {
		return fmt.Errorf("poller: %w", err)
	}

	if err := cfg.Db.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}

	// redis and queue are optional
	if cfg.Redis != nil {
		if err := cfg.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}

	if cfg.Queue != nil {
		if err := cfg.Queue.Validate(); err != nil {
			return fmt.Errorf("queue: %w", err)
		}
	}

	if err := cfg.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	return nil
}

// New returns a fully parsed Config object from a given file path.
// Every key can be overridden by an environment variable, e.g.
// TELEGRAM_BOT_TOKEN overrides telegram.bot-token.
func New(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		return nil, errors.New("config file path is empty")
	}

	v := viper.New()
	v.SetConfigFile(cfgFile)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
