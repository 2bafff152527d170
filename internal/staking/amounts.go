package staking

import (
	"encoding/json"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// Decimals of the staked token.
const Decimals = 9

// MinArgumentAmount is the smallest call argument (0.01 token) accepted as an
// amount. Smaller u64 arguments are usually indexes or flags.
var MinArgumentAmount = sdkmath.NewInt(10_000_000)

var (
	// eventAmountFields are the event payload fields carrying the moved
	// amount, by priority. Reward fields are not principal and are not listed.
	eventAmountFields = []string{
		"principal_amount",
		"principal_returned",
		"amount",
		"stake_amount",
		"unstake_amount",
		"value",
		"shares_minted",
	}

	// historyAmountFields are read when replaying deposit and claim history.
	historyAmountFields = []string{"amount", "principal_amount", "principal_returned"}
)

// ToHuman converts base units into token units.
func ToHuman(base sdkmath.Int) decimal.Decimal {
	if base.IsNil() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(base.BigInt(), -Decimals)
}

// ParseAmount parses an integer encoded either as a JSON string or a JSON number.
func ParseAmount(raw json.RawMessage) (sdkmath.Int, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return sdkmath.Int{}, false
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(raw, &s); err != nil {
			return sdkmath.Int{}, false
		}
	}
	return sdkmath.NewIntFromString(s)
}

// firstField returns the value of the first listed field present in fields.
// A present but unparsable value yields false without looking further.
func firstField(fields map[string]json.RawMessage, names []string) (sdkmath.Int, bool) {
	for _, name := range names {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			continue
		}
		return ParseAmount(raw)
	}
	return sdkmath.Int{}, false
}

// HistoryAmount extracts the amount of a deposit or claim event payload.
func HistoryAmount(fields map[string]json.RawMessage) (sdkmath.Int, bool) {
	amount, ok := firstField(fields, historyAmountFields)
	if !ok || amount.IsNegative() {
		return sdkmath.Int{}, false
	}
	return amount, true
}
