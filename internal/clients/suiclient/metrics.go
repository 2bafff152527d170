package suiclient

import (
	"context"
	"encoding/json"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
)

type suiClientWithMetrics struct {
	sui SuiInterface
}

func NewSuiClientWithMetrics(sui SuiInterface) *suiClientWithMetrics {
	return &suiClientWithMetrics{sui: sui}
}

func (s *suiClientWithMetrics) QueryTransactionBlocks(
	ctx context.Context, pkg, module, function string, cursor json.RawMessage, limit int, descending bool,
) (*TransactionPage, error) {
	return runSuiClientMethodWithMetrics("QueryTransactionBlocks", func() (*TransactionPage, error) {
		return s.sui.QueryTransactionBlocks(ctx, pkg, module, function, cursor, limit, descending)
	})
}

func (s *suiClientWithMetrics) QueryEvents(
	ctx context.Context, moveEventType string, cursor json.RawMessage, limit int, descending bool,
) (*EventPage, error) {
	return runSuiClientMethodWithMetrics("QueryEvents", func() (*EventPage, error) {
		return s.sui.QueryEvents(ctx, moveEventType, cursor, limit, descending)
	})
}

func (s *suiClientWithMetrics) GetLatestCheckpoint(ctx context.Context) (uint64, error) {
	return runSuiClientMethodWithMetrics("GetLatestCheckpoint", func() (uint64, error) {
		return s.sui.GetLatestCheckpoint(ctx)
	})
}

func runSuiClientMethodWithMetrics[T any](method string, f func() (T, error)) (T, error) {
	startTime := time.Now()
	v, err := f()
	duration := time.Since(startTime)

	metrics.RecordSuiClientLatency(duration, method, err != nil)
	return v, err
}
