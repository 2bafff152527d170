package staking

import (
	"strings"

	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/types"
)

const programmableTransactionKind = "ProgrammableTransaction"

type Classifier struct {
	packageID string
	module    string
}

func NewClassifier(packageID, module string) *Classifier {
	return &Classifier{packageID: packageID, module: module}
}

// Classify reports whether tx calls one of the monitored staking functions.
// The first matching MoveCall wins. Incomplete records never match.
func (c *Classifier) Classify(tx *suiclient.TransactionBlock) (*types.ClassifiedTransaction, bool) {
	if tx == nil || tx.Digest == "" {
		return nil, false
	}
	ptb := tx.Programmable()
	if ptb == nil || ptb.Kind != programmableTransactionKind {
		return nil, false
	}

	for i, cmd := range ptb.Transactions {
		call := cmd.MoveCall
		if call == nil {
			continue
		}
		if !SameObjectID(call.Package, c.packageID) || call.Module != c.module {
			continue
		}
		if !types.IsMonitoredFunction(call.Function) {
			continue
		}
		return &types.ClassifiedTransaction{
			Function:     types.StakingFunction(call.Function),
			Sender:       tx.Sender(),
			Digest:       tx.Digest,
			CommandIndex: i,
		}, true
	}
	return nil, false
}

// SameObjectID compares two object ids ignoring case and zero padding, so
// that 0x2 and 0x0000...0002 are equal.
func SameObjectID(a, b string) bool {
	na, nb := normalizeObjectID(a), normalizeObjectID(b)
	return na != "" && na == nb
}

func normalizeObjectID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if !strings.HasPrefix(id, "0x") {
		return ""
	}
	id = strings.TrimLeft(id[2:], "0")
	if id == "" {
		return "0"
	}
	return id
}
