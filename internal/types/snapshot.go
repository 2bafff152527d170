package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// PriceSnapshot is an immutable price reading. It is replaced wholesale on refresh.
type PriceSnapshot struct {
	Price             decimal.Decimal `json:"price"`
	CirculatingSupply decimal.Decimal `json:"circulating_supply"`
	TotalSupply       decimal.Decimal `json:"total_supply"`
	MaxSupply         decimal.Decimal `json:"max_supply"`
	FetchedAt         time.Time       `json:"fetched_at"`
}

// StatsSnapshot holds lifetime staking totals computed from the full event history.
type StatsSnapshot struct {
	NetStaked      decimal.Decimal `json:"net_staked"`
	NetStakedFiat  decimal.Decimal `json:"net_staked_fiat"`
	TotalDeposited decimal.Decimal `json:"total_deposited"`
	TotalClaimed   decimal.Decimal `json:"total_claimed"`
	DepositCount   int             `json:"deposit_count"`
	ClaimCount     int             `json:"claim_count"`
	Price          decimal.Decimal `json:"price"`
	// StakedRatio is net staked as a percentage of circulating supply.
	StakedRatio decimal.Decimal `json:"staked_ratio"`
	// Partial is set when at least one event stream stopped early because of errors.
	Partial   bool      `json:"partial"`
	Timestamp time.Time `json:"timestamp"`

	// base unit totals, kept for exact arithmetic
	NetStakedBase      sdkmath.Int `json:"net_staked_base"`
	TotalDepositedBase sdkmath.Int `json:"total_deposited_base"`
	TotalClaimedBase   sdkmath.Int `json:"total_claimed_base"`
}

// CacheStatus describes the age of a cached snapshot.
type CacheStatus struct {
	IsCached         bool  `json:"is_cached"`
	AgeSeconds       int64 `json:"age_seconds,omitempty"`
	RemainingSeconds int64 `json:"remaining_seconds,omitempty"`
}
