package staking

import (
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/types"
)

// AmountSource tells which part of a transaction the amount was read from.
type AmountSource string

const (
	SourceNone          AmountSource = "none"
	SourceEvent         AmountSource = "event"
	SourceArgument      AmountSource = "argument"
	SourceBalanceChange AmountSource = "balance_change"
)

type Extractor struct {
	packageIDs     []string
	module         string
	coinTypeSuffix string
}

// NewExtractor accepts events from any of packageIDs, so history emitted
// before a package upgrade is still recognised.
func NewExtractor(packageIDs []string, module, coinTypeSuffix string) *Extractor {
	return &Extractor{
		packageIDs:     packageIDs,
		module:         module,
		coinTypeSuffix: coinTypeSuffix,
	}
}

// Extract returns the staked amount of a classified transaction in base
// units. A zero amount means it could not be determined.
func (e *Extractor) Extract(
	tx *suiclient.TransactionBlock, classified *types.ClassifiedTransaction,
) (sdkmath.Int, AmountSource) {
	if tx == nil {
		return sdkmath.ZeroInt(), SourceNone
	}
	if amount, ok := e.fromEvents(tx); ok {
		return amount, SourceEvent
	}
	if amount, ok := e.fromArguments(tx, classified); ok {
		return amount, SourceArgument
	}
	if amount, ok := e.fromBalanceChanges(tx); ok {
		return amount, SourceBalanceChange
	}
	return sdkmath.ZeroInt(), SourceNone
}

func (e *Extractor) fromEvents(tx *suiclient.TransactionBlock) (sdkmath.Int, bool) {
	for i := range tx.Events {
		event := &tx.Events[i]
		if !e.IsModuleEvent(event.Type) {
			continue
		}
		amount, ok := firstField(event.Fields(), eventAmountFields)
		if ok && amount.IsPositive() {
			return amount, true
		}
	}
	return sdkmath.Int{}, false
}

func (e *Extractor) fromBalanceChanges(tx *suiclient.TransactionBlock) (sdkmath.Int, bool) {
	if e.coinTypeSuffix == "" {
		return sdkmath.Int{}, false
	}
	for _, change := range tx.BalanceChanges {
		if !strings.HasSuffix(change.CoinType, e.coinTypeSuffix) {
			continue
		}
		amount, ok := sdkmath.NewIntFromString(change.Amount)
		if !ok {
			return sdkmath.Int{}, false
		}
		return amount.Abs(), true
	}
	return sdkmath.Int{}, false
}

// IsModuleEvent reports whether eventType was emitted by the staking module
// of one of the known packages, e.g. 0xabc::staking::DepositedEvent
func (e *Extractor) IsModuleEvent(eventType string) bool {
	parts := strings.SplitN(eventType, "::", 3)
	if len(parts) != 3 || parts[1] != e.module {
		return false
	}
	for _, id := range e.packageIDs {
		if SameObjectID(parts[0], id) {
			return true
		}
	}
	return false
}
