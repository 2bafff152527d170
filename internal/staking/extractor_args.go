package staking

import (
	"encoding/json"

	sdkmath "cosmossdk.io/math"
	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/types"
)

const (
	pureInputType = "pure"
	u64ValueType  = "u64"
)

// inlineArgument is a pure value embedded directly in the argument list.
type inlineArgument struct {
	Type      string          `json:"type"`
	ValueType string          `json:"valueType"`
	Value     json.RawMessage `json:"value"`
}

type inputArgument struct {
	Input *int `json:"Input"`
}

// fromArguments is a heuristic: the first pure u64 argument of the matched
// call that is large enough to be an amount. Only the matched call is
// inspected.
func (e *Extractor) fromArguments(
	tx *suiclient.TransactionBlock, classified *types.ClassifiedTransaction,
) (sdkmath.Int, bool) {
	ptb := tx.Programmable()
	if ptb == nil || classified == nil {
		return sdkmath.Int{}, false
	}
	if classified.CommandIndex < 0 || classified.CommandIndex >= len(ptb.Transactions) {
		return sdkmath.Int{}, false
	}
	call := ptb.Transactions[classified.CommandIndex].MoveCall
	if call == nil {
		return sdkmath.Int{}, false
	}

	for _, arg := range call.Arguments {
		if amount, ok := argumentAmount(arg, ptb.Inputs); ok {
			return amount, true
		}
	}
	return sdkmath.Int{}, false
}

func argumentAmount(arg json.RawMessage, inputs []suiclient.CallInput) (sdkmath.Int, bool) {
	// "GasCoin" and other string arguments do not decode into either shape
	var inline inlineArgument
	if err := json.Unmarshal(arg, &inline); err == nil && inline.Type == pureInputType {
		return pureU64(inline.ValueType, inline.Value)
	}

	var ref inputArgument
	if err := json.Unmarshal(arg, &ref); err != nil || ref.Input == nil {
		return sdkmath.Int{}, false
	}
	if *ref.Input < 0 || *ref.Input >= len(inputs) {
		return sdkmath.Int{}, false
	}
	input := inputs[*ref.Input]
	if input.Type != pureInputType {
		return sdkmath.Int{}, false
	}
	return pureU64(input.ValueType, input.Value)
}

func pureU64(valueType string, value json.RawMessage) (sdkmath.Int, bool) {
	if valueType != u64ValueType {
		return sdkmath.Int{}, false
	}
	amount, ok := ParseAmount(value)
	if !ok || amount.LT(MinArgumentAmount) {
		return sdkmath.Int{}, false
	}
	return amount, true
}
