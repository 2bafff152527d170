package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/db"
	"github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/tests/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	snapshot *types.StatsSnapshot
	err      error
	forced   []bool
}

func (f *fakeStats) GetTotalStaking(_ context.Context, forceRefresh bool) (*types.StatsSnapshot, error) {
	f.forced = append(f.forced, forceRefresh)
	return f.snapshot, f.err
}

func (f *fakeStats) CacheStatus() types.CacheStatus {
	return types.CacheStatus{IsCached: f.snapshot != nil}
}

func testConfig() *config.Config {
	return &config.Config{
		Sui: config.SuiConfig{RetryInterval: time.Millisecond},
		Monitor: config.MonitorConfig{
			PollInterval:  10 * time.Second,
			ThresholdFiat: 10000,
		},
		Poller: config.PollerConfig{
			StatsPollingInterval:        time.Hour,
			SubscriptionPollingInterval: time.Hour,
			DisableStatsPoller:          true,
		},
	}
}

type testDeps struct {
	db       *mocks.DbInterface
	sui      *mocks.SuiInterface
	sessions *mocks.SessionManager
	stats    *fakeStats
}

func newTestService(t *testing.T) (*Service, testDeps) {
	deps := testDeps{
		db:       mocks.NewDbInterface(t),
		sui:      mocks.NewSuiInterface(t),
		sessions: mocks.NewSessionManager(t),
		stats:    &fakeStats{},
	}
	return NewService(testConfig(), deps.db, deps.sui, deps.sessions, deps.stats), deps
}

func subscriptionConfig(threshold int64, interval time.Duration) types.SubscriptionConfig {
	return types.SubscriptionConfig{ThresholdFiat: decimal.NewFromInt(threshold), PollInterval: interval}
}

func running(id string, cfg types.SubscriptionConfig) types.SessionStatus {
	return types.SessionStatus{
		ID:                id,
		State:             types.SessionRunning,
		ThresholdFiat:     cfg.ThresholdFiat.String(),
		PollIntervalMilli: cfg.PollInterval.Milliseconds(),
	}
}

func stopped(id string) types.SessionStatus {
	return types.SessionStatus{ID: id, State: types.SessionStopped}
}

func TestBootstrapSessions(t *testing.T) {
	t.Run("starts active subscriptions only", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("LoadSubscriptions", mock.Anything).Return([]model.SubscriptionDocument{
			{ID: "1", ThresholdFiat: "100", Active: true},
			{ID: "2", ThresholdFiat: "100", Active: false},
			{ID: "3", ThresholdFiat: "not-a-number", Active: true},
		}, nil).Once()
		deps.sessions.On("IDs").Return(nil).Once()
		deps.sessions.On("Status", "1").Return(stopped("1")).Once()
		// stored interval of zero falls back to the configured one
		deps.sessions.On("Start", mock.Anything, "1", subscriptionConfig(100, 10*time.Second)).Return(nil).Once()

		require.NoError(t, s.BootstrapSessions(t.Context()))
	})

	t.Run("retries until the store answers", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("LoadSubscriptions", mock.Anything).Return(nil, errors.New("connection refused")).Twice()
		deps.db.On("LoadSubscriptions", mock.Anything).Return([]model.SubscriptionDocument{}, nil).Once()
		deps.sessions.On("IDs").Return(nil).Once()

		require.NoError(t, s.BootstrapSessions(t.Context()))
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("LoadSubscriptions", mock.Anything).Return(nil, errors.New("connection refused")).Times(bootstrapAttempts)

		err := s.BootstrapSessions(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestSyncSessions(t *testing.T) {
	s, deps := newTestService(t)

	keep := subscriptionConfig(100, time.Minute)
	changed := subscriptionConfig(200, time.Minute)

	deps.db.On("LoadSubscriptions", mock.Anything).Return([]model.SubscriptionDocument{
		*model.NewSubscriptionDocument("keep", keep, true),
		*model.NewSubscriptionDocument("changed", changed, true),
		*model.NewSubscriptionDocument("new", keep, true),
		*model.NewSubscriptionDocument("paused", keep, false),
	}, nil).Once()
	deps.sessions.On("IDs").Return([]string{"keep", "changed", "paused", "removed"}).Once()
	deps.sessions.On("Stop", "paused").Return(true).Once()
	deps.sessions.On("Stop", "removed").Return(true).Once()
	deps.sessions.On("Status", "keep").Return(running("keep", keep)).Once()
	deps.sessions.On("Status", "changed").Return(running("changed", subscriptionConfig(100, time.Minute))).Once()
	deps.sessions.On("Status", "new").Return(stopped("new")).Once()
	deps.sessions.On("Start", mock.Anything, "changed", changed).Return(nil).Once()
	deps.sessions.On("Start", mock.Anything, "new", keep).Return(nil).Once()

	require.NoError(t, s.SyncSessions(t.Context()))
}

func TestSubscribe(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("SaveSubscription", mock.Anything, mock.MatchedBy(func(doc *model.SubscriptionDocument) bool {
			return doc.ID == "-1001" && doc.ThresholdFiat == "10000" && doc.PollIntervalMs == 10000 && doc.Active
		})).Return(nil).Once()
		deps.sessions.On("Start", mock.Anything, "-1001", mock.MatchedBy(func(cfg types.SubscriptionConfig) bool {
			return cfg.ThresholdFiat.Equal(decimal.NewFromInt(10000)) && cfg.PollInterval == 10*time.Second
		})).Return(nil).Once()

		require.NoError(t, s.Subscribe(t.Context(), "-1001", types.SubscriptionConfig{}))
	})

	t.Run("invalid", func(t *testing.T) {
		s, _ := newTestService(t)

		err := s.Subscribe(t.Context(), "", types.SubscriptionConfig{})
		assert.ErrorIs(t, err, ErrInvalidSubscription)

		err = s.Subscribe(t.Context(), "-1001", subscriptionConfig(-5, 0))
		assert.ErrorIs(t, err, ErrInvalidSubscription)
	})

	t.Run("store failure does not start a session", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("SaveSubscription", mock.Anything, mock.Anything).Return(errors.New("write failed")).Once()

		require.Error(t, s.Subscribe(t.Context(), "-1001", subscriptionConfig(5, time.Second)))
	})
}

func TestUnsubscribe(t *testing.T) {
	t.Run("keeps settings as inactive", func(t *testing.T) {
		s, deps := newTestService(t)
		doc := model.NewSubscriptionDocument("@alerts", subscriptionConfig(500, time.Minute), true)

		deps.db.On("GetSubscription", mock.Anything, "@alerts").Return(doc, nil).Once()
		deps.sessions.On("Stop", "@alerts").Return(true).Once()
		deps.db.On("SaveSubscription", mock.Anything, mock.MatchedBy(func(doc *model.SubscriptionDocument) bool {
			return doc.ID == "@alerts" && !doc.Active && doc.ThresholdFiat == "500"
		})).Return(nil).Once()

		require.NoError(t, s.Unsubscribe(t.Context(), "@alerts"))
	})

	t.Run("unknown subscription", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("GetSubscription", mock.Anything, "@missing").
			Return(nil, &db.NotFoundError{Key: "@missing", Message: "not found"}).Once()

		err := s.Unsubscribe(t.Context(), "@missing")
		assert.True(t, db.IsNotFoundError(err))
	})
}

func TestRemoveAndList(t *testing.T) {
	s, deps := newTestService(t)

	deps.sessions.On("Stop", "1").Return(false).Once()
	deps.db.On("DeleteSubscription", mock.Anything, "1").Return(nil).Once()
	require.NoError(t, s.RemoveSubscription(t.Context(), "1"))

	cfg := subscriptionConfig(100, time.Minute)
	deps.db.On("LoadSubscriptions", mock.Anything).Return([]model.SubscriptionDocument{
		*model.NewSubscriptionDocument("2", cfg, true),
	}, nil).Once()
	deps.sessions.On("Status", "2").Return(running("2", cfg)).Once()

	views, err := s.ListSubscriptions(t.Context())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "2", views[0].Subscription.ID)
	assert.True(t, views[0].Session.IsActive())
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("Ping", mock.Anything).Return(nil).Once()
		deps.sui.On("GetLatestCheckpoint", mock.Anything).Return(uint64(1234), nil).Once()
		deps.sessions.On("ActiveCount").Return(2).Once()

		status, err := s.Health(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1234, status.LatestCheckpoint)
		assert.Equal(t, 2, status.ActiveSessions)
	})

	t.Run("db down", func(t *testing.T) {
		s, deps := newTestService(t)

		deps.db.On("Ping", mock.Anything).Return(errors.New("no reachable servers")).Once()
		deps.sui.On("GetLatestCheckpoint", mock.Anything).Return(uint64(1234), nil).Once()
		deps.sessions.On("ActiveCount").Return(0).Once()

		_, err := s.Health(t.Context())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db: no reachable servers")
	})
}

func TestRefreshStats(t *testing.T) {
	s, deps := newTestService(t)

	deps.stats.snapshot = &types.StatsSnapshot{NetStaked: decimal.NewFromInt(10)}
	require.NoError(t, s.refreshStats(t.Context()))
	assert.Equal(t, []bool{true}, deps.stats.forced)

	deps.stats.err = types.ErrExhaustedRetries
	assert.ErrorIs(t, s.refreshStats(t.Context()), types.ErrExhaustedRetries)
}

func TestStartMonitoringAndShutdown(t *testing.T) {
	s, deps := newTestService(t)

	deps.db.On("LoadSubscriptions", mock.Anything).Return([]model.SubscriptionDocument{}, nil).Once()
	deps.sessions.On("IDs").Return(nil).Once()
	deps.sessions.On("StopAll").Once()
	deps.sessions.On("Wait").Once()

	require.NoError(t, s.StartMonitoring(t.Context()))
	// the subscription poller waits a full interval before its first sync
	s.Shutdown()
}
