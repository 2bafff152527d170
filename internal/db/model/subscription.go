package model

import (
	"fmt"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/shopspring/decimal"
)

const SubscriptionsCollection = "subscriptions"

// SubscriptionDocument is keyed by the notification destination, a Telegram
// chat id or channel username.
type SubscriptionDocument struct {
	ID string `bson:"_id" json:"id"`
	// ThresholdFiat is a decimal string to keep exact values
	ThresholdFiat  string `bson:"threshold_fiat" json:"threshold_fiat"`
	PollIntervalMs int64  `bson:"poll_interval_ms" json:"poll_interval_ms"`
	Active         bool   `bson:"active" json:"active"`
	CreatedAt      int64  `bson:"created_at" json:"created_at"`     // Unix timestamp
	LastUpdated    int64  `bson:"last_updated" json:"last_updated"` // Unix timestamp
}

func NewSubscriptionDocument(id string, cfg types.SubscriptionConfig, active bool) *SubscriptionDocument {
	return &SubscriptionDocument{
		ID:             id,
		ThresholdFiat:  cfg.ThresholdFiat.String(),
		PollIntervalMs: cfg.PollInterval.Milliseconds(),
		Active:         active,
	}
}

func (s *SubscriptionDocument) ToConfig() (types.SubscriptionConfig, error) {
	threshold, err := decimal.NewFromString(s.ThresholdFiat)
	if err != nil {
		return types.SubscriptionConfig{}, fmt.Errorf("invalid threshold %q for %s: %w", s.ThresholdFiat, s.ID, types.ErrMalformedData)
	}
	return types.SubscriptionConfig{
		ThresholdFiat: threshold,
		PollInterval:  time.Duration(s.PollIntervalMs) * time.Millisecond,
	}, nil
}
