package config

import (
	"errors"
	"strings"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/utils"
)

const (
	defaultSuiTimeout       = 10 * time.Second
	defaultSuiMaxRetryTimes = 3
	defaultSuiRetryInterval = 2 * time.Second
	defaultStakingModule    = "staking"
)

type SuiConfig struct {
	RPCAddr string        `mapstructure:"rpc-addr"`
	Timeout time.Duration `mapstructure:"timeout"`
	// PackageID is the current staking package, used for transaction filters.
	PackageID string `mapstructure:"package-id"`
	// LegacyPackageIDs are pre-upgrade packages sharing the same event lineage.
	LegacyPackageIDs []string `mapstructure:"legacy-package-ids"`
	Module           string   `mapstructure:"module"`
	// CoinType is matched as a suffix against balance change coin types, e.g. ::take::TAKE
	CoinType      string        `mapstructure:"coin-type"`
	MaxRetryTimes uint          `mapstructure:"max-retry-times"`
	RetryInterval time.Duration `mapstructure:"retry-interval"`
}

func (cfg *SuiConfig) Validate() error {
	if cfg.RPCAddr == "" {
		return errors.New("rpc-addr is required")
	}
	if !strings.HasPrefix(cfg.PackageID, "0x") {
		return errors.New("package-id must be a 0x prefixed object id")
	}
	for _, id := range cfg.LegacyPackageIDs {
		if !strings.HasPrefix(id, "0x") {
			return errors.New("legacy-package-ids must be 0x prefixed object ids")
		}
	}
	if cfg.CoinType == "" {
		return errors.New("coin-type is required")
	}

	if cfg.Module == "" {
		cfg.Module = defaultStakingModule
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSuiTimeout
	}
	if cfg.MaxRetryTimes == 0 {
		cfg.MaxRetryTimes = defaultSuiMaxRetryTimes
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultSuiRetryInterval
	}

	return nil
}

// PackageIDs returns the current package followed by the legacy ones, without duplicates.
func (cfg *SuiConfig) PackageIDs() []string {
	ids := []string{cfg.PackageID}
	for _, id := range cfg.LegacyPackageIDs {
		if id != cfg.PackageID && !utils.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
