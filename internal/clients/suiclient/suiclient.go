package suiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/rs/zerolog/log"
)

const (
	methodQueryTransactionBlocks = "suix_queryTransactionBlocks"
	methodQueryEvents            = "suix_queryEvents"
	methodLatestCheckpoint       = "sui_getLatestCheckpointSequenceNumber"
)

type SuiClient struct {
	rpcClient *rpc.Client
	cfg       *config.SuiConfig
}

func NewSuiClient(ctx context.Context, cfg *config.SuiConfig) (*SuiClient, error) {
	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCAddr, rpc.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, fmt.Errorf("failed to create sui rpc client: %w", err)
	}
	return &SuiClient{rpcClient: rpcClient, cfg: cfg}, nil
}

func (c *SuiClient) Close() {
	c.rpcClient.Close()
}

func (c *SuiClient) QueryTransactionBlocks(
	ctx context.Context, pkg, module, function string, cursor json.RawMessage, limit int, descending bool,
) (*TransactionPage, error) {
	query := transactionQuery{
		Filter: transactionFilter{MoveFunction: moveFunctionFilter{
			Package:  pkg,
			Module:   module,
			Function: function,
		}},
		Options: transactionOptions{ShowInput: true, ShowEvents: true, ShowBalanceChanges: true},
	}

	var raw rawPage
	if err := c.call(ctx, &raw, methodQueryTransactionBlocks, query, cursorArg(cursor), limit, descending); err != nil {
		return nil, fmt.Errorf("failed to query %s::%s::%s transactions: %w", pkg, module, function, err)
	}

	page := &TransactionPage{
		Data:        make([]TransactionBlock, 0, len(raw.Data)),
		NextCursor:  raw.NextCursor,
		HasNextPage: raw.HasNextPage,
	}
	for _, item := range raw.Data {
		var tx TransactionBlock
		if err := json.Unmarshal(item, &tx); err != nil || tx.Digest == "" {
			log.Ctx(ctx).Warn().Err(err).Str("function", function).Msg("skipping malformed transaction record")
			page.Skipped++
			continue
		}
		page.Data = append(page.Data, tx)
	}
	return page, nil
}

func (c *SuiClient) QueryEvents(
	ctx context.Context, moveEventType string, cursor json.RawMessage, limit int, descending bool,
) (*EventPage, error) {
	var raw rawPage
	err := c.call(ctx, &raw, methodQueryEvents, eventFilter{MoveEventType: moveEventType}, cursorArg(cursor), limit, descending)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s events: %w", moveEventType, err)
	}

	page := &EventPage{
		Data:        make([]Event, 0, len(raw.Data)),
		NextCursor:  raw.NextCursor,
		HasNextPage: raw.HasNextPage,
	}
	for _, item := range raw.Data {
		var event Event
		if err := json.Unmarshal(item, &event); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("event_type", moveEventType).Msg("skipping malformed event record")
			page.Skipped++
			continue
		}
		page.Data = append(page.Data, event)
	}
	return page, nil
}

// GetLatestCheckpoint is used as a liveness probe of the RPC node, so unlike
// the paginated queries it retries on its own.
func (c *SuiClient) GetLatestCheckpoint(ctx context.Context) (uint64, error) {
	callForCheckpoint := func() (uint64, error) {
		var seq string
		if err := c.call(ctx, &seq, methodLatestCheckpoint); err != nil {
			return 0, err
		}
		return strconv.ParseUint(seq, 10, 64)
	}

	seq, err := retry.DoWithData(callForCheckpoint,
		retry.Context(ctx),
		retry.Attempts(c.cfg.MaxRetryTimes),
		retry.Delay(c.cfg.RetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", c.cfg.MaxRetryTimes).
				Err(err).
				Msg("failed to call the sui rpc node")
		}))
	if err != nil {
		return 0, fmt.Errorf("failed to get latest checkpoint: %w", err)
	}
	return seq, nil
}

func (c *SuiClient) call(ctx context.Context, result any, method string, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	err := c.rpcClient.CallContext(ctx, result, method, args...)
	if err == nil {
		return nil
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return &types.RateLimitError{Message: fmt.Sprintf("%s: %s", method, httpErr.Status)}
	}
	return err
}

// cursorArg keeps an absent cursor encoded as JSON null.
func cursorArg(cursor json.RawMessage) any {
	if len(cursor) == 0 || string(cursor) == "null" {
		return nil
	}
	return cursor
}
