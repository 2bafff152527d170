package suiclient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRPCServer answers every call with the result produced by handle.
func newRPCServer(t *testing.T, handle func(req rpcRequest) string) *SuiClient {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"jsonrpc":"2.0","id":` + string(req.ID) + `,"result":` + handle(req) + `}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewSuiClient(t.Context(), &config.SuiConfig{
		RPCAddr:       server.URL,
		Timeout:       time.Second,
		MaxRetryTimes: 2,
		RetryInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

const txPage = `{
	"data": [
		{
			"digest": "D1",
			"timestampMs": "1700000000000",
			"transaction": {"data": {"sender": "0xabc", "transaction": {
				"kind": "ProgrammableTransaction",
				"inputs": [{"type": "pure", "valueType": "u64", "value": "40000000000"}],
				"transactions": [
					{"SplitCoins": ["GasCoin", [{"Input": 0}]]},
					{"MoveCall": {"package": "0xpkg", "module": "staking", "function": "deposit", "arguments": ["GasCoin", {"Input": 0}]}}
				]
			}}},
			"events": [{"id": {"txDigest": "D1", "eventSeq": "0"}, "type": "0xpkg::staking::DepositedEvent", "parsedJson": {"amount": "40000000000"}}],
			"balanceChanges": [{"owner": {"AddressOwner": "0xabc"}, "coinType": "0x2::take::TAKE", "amount": "-40000000000"}]
		},
		{"digest": 42},
		{"digest": "D2"}
	],
	"nextCursor": "D2",
	"hasNextPage": true
}`

func TestQueryTransactionBlocks(t *testing.T) {
	var got rpcRequest
	client := newRPCServer(t, func(req rpcRequest) string {
		got = req
		return txPage
	})

	page, err := client.QueryTransactionBlocks(t.Context(), "0xpkg", "staking", "deposit", nil, 50, true)
	require.NoError(t, err)

	assert.Equal(t, methodQueryTransactionBlocks, got.Method)
	require.Len(t, got.Params, 4)
	assert.JSONEq(t,
		`{"filter":{"MoveFunction":{"package":"0xpkg","module":"staking","function":"deposit"}},"options":{"showInput":true,"showEvents":true,"showBalanceChanges":true}}`,
		string(got.Params[0]))
	assert.Equal(t, "null", string(got.Params[1]))
	assert.Equal(t, "50", string(got.Params[2]))
	assert.Equal(t, "true", string(got.Params[3]))

	require.Len(t, page.Data, 2)
	assert.Equal(t, 1, page.Skipped)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, `"D2"`, string(page.NextCursor))

	tx := page.Data[0]
	assert.Equal(t, "0xabc", tx.Sender())
	ptb := tx.Programmable()
	require.NotNil(t, ptb)
	require.Len(t, ptb.Transactions, 2)
	assert.Nil(t, ptb.Transactions[0].MoveCall)
	require.NotNil(t, ptb.Transactions[1].MoveCall)
	assert.Equal(t, "deposit", ptb.Transactions[1].MoveCall.Function)
	assert.Equal(t, `"40000000000"`, string(tx.Events[0].Fields()["amount"]))

	assert.Empty(t, page.Data[1].Sender())
	assert.Nil(t, page.Data[1].Programmable())
}

func TestQueryEventsPassesCursor(t *testing.T) {
	var got rpcRequest
	client := newRPCServer(t, func(req rpcRequest) string {
		got = req
		return `{"data":[{"id":{"txDigest":"D9","eventSeq":"1"},"type":"0xpkg::staking::ClaimedEvent","parsedJson":[1,2]}],"nextCursor":{"txDigest":"D9","eventSeq":"1"},"hasNextPage":false}`
	})

	cursor := json.RawMessage(`{"txDigest":"D8","eventSeq":"0"}`)
	page, err := client.QueryEvents(t.Context(), "0xpkg::staking::ClaimedEvent", cursor, 50, true)
	require.NoError(t, err)

	assert.Equal(t, methodQueryEvents, got.Method)
	assert.JSONEq(t, `{"MoveEventType":"0xpkg::staking::ClaimedEvent"}`, string(got.Params[0]))
	assert.JSONEq(t, string(cursor), string(got.Params[1]))

	require.Len(t, page.Data, 1)
	assert.False(t, page.HasNextPage)
	assert.Nil(t, page.Data[0].Fields())
}

func TestGetLatestCheckpoint(t *testing.T) {
	client := newRPCServer(t, func(req rpcRequest) string {
		assert.Equal(t, methodLatestCheckpoint, req.Method)
		return `"123456"`
	})

	seq, err := client.GetLatestCheckpoint(t.Context())
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), seq)
}

func TestRateLimitedNode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(server.Close)

	client, err := NewSuiClient(t.Context(), &config.SuiConfig{RPCAddr: server.URL, Timeout: time.Second})
	require.NoError(t, err)
	defer client.Close()

	_, err = client.QueryEvents(t.Context(), "0xpkg::staking::DepositedEvent", nil, 50, true)
	require.Error(t, err)
	assert.True(t, types.IsRateLimited(err))
}
