package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// StakingFunction is one of the monitored entry functions of the staking module.
type StakingFunction string

const (
	FunctionDeposit        StakingFunction = "deposit"
	FunctionRequestUnstake StakingFunction = "request_unstake"
	FunctionClaimUnstake   StakingFunction = "claim_unstake"
)

func (f StakingFunction) String() string {
	return string(f)
}

// MonitoredFunctions returns the functions polled by every session, in polling order.
func MonitoredFunctions() []StakingFunction {
	return []StakingFunction{FunctionDeposit, FunctionRequestUnstake, FunctionClaimUnstake}
}

func IsMonitoredFunction(name string) bool {
	for _, f := range MonitoredFunctions() {
		if string(f) == name {
			return true
		}
	}
	return false
}

// Label is the human readable name used in alerts.
func (f StakingFunction) Label() string {
	switch f {
	case FunctionDeposit:
		return "Stake"
	case FunctionRequestUnstake:
		return "Unstake Request"
	case FunctionClaimUnstake:
		return "Claim"
	default:
		return string(f)
	}
}

// Emoji marks the alert kind at a glance.
func (f StakingFunction) Emoji() string {
	switch f {
	case FunctionDeposit:
		return "🟢"
	case FunctionRequestUnstake:
		return "🟡"
	case FunctionClaimUnstake:
		return "🔴"
	default:
		return "⚪"
	}
}

// ClassifiedTransaction is a transaction recognised as a call into the staking module.
type ClassifiedTransaction struct {
	Function StakingFunction
	Sender   string
	Digest   string
	// CommandIndex is the position of the matched MoveCall inside the programmable transaction.
	CommandIndex int
}

// SubscriptionConfig is what a monitoring session needs from a subscription.
type SubscriptionConfig struct {
	ThresholdFiat decimal.Decimal
	PollInterval  time.Duration
}
