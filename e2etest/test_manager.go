//go:build e2e

package e2etest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/overtake-labs/staking-monitor/e2etest/container"
	"github.com/overtake-labs/staking-monitor/internal/alert"
	"github.com/overtake-labs/staking-monitor/internal/clients/coingecko"
	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/clients/telegram"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/db"
	"github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/monitor"
	"github.com/overtake-labs/staking-monitor/internal/price"
	"github.com/overtake-labs/staking-monitor/internal/queue"
	"github.com/overtake-labs/staking-monitor/internal/services"
	"github.com/overtake-labs/staking-monitor/internal/stats"
	"github.com/stretchr/testify/require"
)

const (
	packageID = "0x528a"
	botToken  = "123:e2e"
)

var (
	eventuallyWaitTimeOut = 20 * time.Second
	eventuallyPollTime    = 100 * time.Millisecond
)

type TestManager struct {
	Config   *config.Config
	DbClient *db.Database
	Service  *services.Service
	Ledger   *fakeLedger
	Telegram *fakeTelegram
	Queue    *queue.QueueManager

	cancel context.CancelFunc
}

// StartManager starts mongo and rabbitmq containers, fake upstream APIs and a
// fully wired service.
func StartManager(t *testing.T) *TestManager {
	manager := container.NewManager(t)
	mongoAddr := manager.RunMongo(t)
	amqpURL := manager.RunRabbitMQ(t)

	ledger := newFakeLedger(t)
	bot := newFakeTelegram(t)
	prices := newFakeCoinGecko(t)

	cfg := &config.Config{
		Sui: config.SuiConfig{
			RPCAddr:   ledger.server.URL,
			PackageID: packageID,
			CoinType:  "::take::TAKE",
		},
		Price:    config.PriceConfig{BaseURL: prices.URL, CoinID: "overtake"},
		Telegram: config.TelegramConfig{BotToken: botToken, APIEndpoint: bot.server.URL + "/bot%s/%s"},
		Monitor:  config.MonitorConfig{PollInterval: 200 * time.Millisecond},
		Poller: config.PollerConfig{
			SubscriptionPollingInterval: 200 * time.Millisecond,
			DisableStatsPoller:          true,
		},
		Db: config.DbConfig{
			Username: container.MongoUsername,
			Password: container.MongoPassword,
			DbName:   "e2e",
			Address:  mongoAddr,
		},
		Queue: &config.QueueConfig{URL: amqpURL, QueueName: "staking_alerts_e2e"},
	}
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())

	var dbClient *db.Database
	require.NoError(t, manager.Retry(func() error {
		var err error
		if dbClient, err = db.New(ctx, cfg.Db); err != nil {
			return err
		}
		return dbClient.Ping(ctx)
	}))
	require.NoError(t, model.Setup(ctx, &cfg.Db))

	var qm *queue.QueueManager
	require.NoError(t, manager.Retry(func() error {
		var err error
		qm, err = queue.NewQueueManager(cfg.Queue)
		return err
	}))

	suiClient, err := suiclient.NewSuiClient(ctx, &cfg.Sui)
	require.NoError(t, err)
	sui := suiclient.NewSuiClientWithMetrics(suiClient)

	notifier, err := telegram.NewClient(&cfg.Telegram)
	require.NoError(t, err)

	oracle := price.NewOracle(coingecko.NewClient(&cfg.Price), cfg.Price.CacheTTL)
	dispatcher := alert.NewDispatcher(notifier, &cfg.Telegram, alert.WithEventPublisher(qm))
	sessions := monitor.NewManager(sui, oracle, dispatcher, &cfg.Sui, &cfg.Monitor)
	aggregator := stats.NewAggregator(sui, oracle, &cfg.Sui, &cfg.Stats)
	service := services.NewService(cfg, db.NewDbWithMetrics(dbClient), sui, sessions, aggregator)
	require.NoError(t, service.StartMonitoring(ctx))

	tm := &TestManager{
		Config:   cfg,
		DbClient: dbClient,
		Service:  service,
		Ledger:   ledger,
		Telegram: bot,
		Queue:    qm,
		cancel:   cancel,
	}
	t.Cleanup(func() {
		tm.Stop()
		suiClient.Close()
	})
	return tm
}

func (tm *TestManager) Stop() {
	tm.cancel()
	tm.Service.Shutdown()
	tm.Queue.Shutdown()
	_ = tm.DbClient.Disconnect(context.Background())
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// fakeLedger serves suix_queryTransactionBlocks from an in-memory list, newest first.
type fakeLedger struct {
	server *httptest.Server

	mu  sync.Mutex
	txs map[string][]json.RawMessage
}

func newFakeLedger(t *testing.T) *fakeLedger {
	l := &fakeLedger{txs: make(map[string][]json.RawMessage)}
	l.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		var result string
		switch req.Method {
		case "suix_queryTransactionBlocks":
			var query struct {
				Filter struct {
					MoveFunction struct {
						Function string `json:"function"`
					} `json:"MoveFunction"`
				} `json:"filter"`
			}
			_ = json.Unmarshal(req.Params[0], &query)
			result = l.page(query.Filter.MoveFunction.Function)
		case "suix_queryEvents":
			result = `{"data":[],"nextCursor":null,"hasNextPage":false}`
		default:
			result = `"100"`
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,"result":%s}`, req.ID, result)
	}))
	t.Cleanup(l.server.Close)
	return l
}

// AddStakingTx records a call to function moving amount base units.
func (l *fakeLedger) AddStakingTx(digest, sender, function, amount string) {
	tx := fmt.Sprintf(`{
		"digest": %q,
		"transaction": {"data": {"sender": %q, "transaction": {
			"kind": "ProgrammableTransaction",
			"inputs": [{"type": "pure", "valueType": "u64", "value": %q}],
			"transactions": [{"MoveCall": {"package": %q, "module": "staking", "function": %q, "arguments": [{"Input": 0}]}}]
		}}},
		"events": [{"id": {"txDigest": %q, "eventSeq": "0"}, "type": "%s::staking::DepositedEvent", "parsedJson": {"amount": %q}}]
	}`, digest, sender, amount, packageID, function, digest, packageID, amount)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.txs[function] = append([]json.RawMessage{json.RawMessage(tx)}, l.txs[function]...)
}

func (l *fakeLedger) page(function string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, _ := json.Marshal(l.txs[function])
	if l.txs[function] == nil {
		data = []byte("[]")
	}
	return `{"data":` + string(data) + `,"nextCursor":null,"hasNextPage":false}`
}

type sentMessage struct {
	ChatID string
	Text   string
}

// fakeTelegram records every sendMessage call.
type fakeTelegram struct {
	server *httptest.Server

	mu   sync.Mutex
	sent []sentMessage
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	f := &fakeTelegram{}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"monitor","username":"e2e_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			_ = r.ParseForm()
			f.mu.Lock()
			f.sent = append(f.sent, sentMessage{ChatID: r.PostForm.Get("chat_id"), Text: r.PostForm.Get("text")})
			f.mu.Unlock()
			w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"ok":false,"error_code":404,"description":"Not Found"}`))
		}
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeTelegram) Sent() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

// newFakeCoinGecko serves a fixed price of 0.28.
func newFakeCoinGecko(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"market_data":{"current_price":{"usd":0.28},"circulating_supply":176838068,"total_supply":1000000000,"max_supply":1000000000}}`))
	}))
	t.Cleanup(server.Close)
	return server
}
