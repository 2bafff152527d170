package suiclient

import (
	"context"
	"encoding/json"
)

//go:generate mockery --name=SuiInterface --output=../../../tests/mocks --outpkg=mocks --filename=mock_sui_client.go
type SuiInterface interface {
	// QueryTransactionBlocks returns one page of transactions calling pkg::module::function.
	// A nil cursor starts from the newest (descending) or oldest transaction.
	QueryTransactionBlocks(
		ctx context.Context, pkg, module, function string, cursor json.RawMessage, limit int, descending bool,
	) (*TransactionPage, error)
	// QueryEvents returns one page of events with the fully qualified Move event type.
	QueryEvents(
		ctx context.Context, moveEventType string, cursor json.RawMessage, limit int, descending bool,
	) (*EventPage, error)
	GetLatestCheckpoint(ctx context.Context) (uint64, error)
}
