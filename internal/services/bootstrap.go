package services

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/observability/tracing"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/internal/utils/poller"
	"github.com/rs/zerolog/log"
)

const bootstrapAttempts = 5

// BootstrapSessions loads the subscription store, retrying while it is not
// reachable yet, and starts a session for every active subscription.
func (s *Service) BootstrapSessions(ctx context.Context) error {
	ctx = tracing.InjectTraceID(ctx)

	var subs []model.SubscriptionDocument
	err := retry.Do(
		func() error {
			var err error
			subs, err = s.db.LoadSubscriptions(ctx)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(bootstrapAttempts),
		retry.Delay(s.cfg.Sui.RetryInterval),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().Err(err).Uint("attempt", n+1).Msg("failed to load subscriptions, retrying")
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}

	started := s.reconcile(ctx, subs)
	log.Ctx(ctx).Info().
		Int("subscriptions", len(subs)).
		Int("started", started).
		Msg("monitoring sessions bootstrapped")
	return nil
}

// StartSubscriptionPoller periodically applies subscription changes made
// through the CLI to the running sessions.
func (s *Service) StartSubscriptionPoller(ctx context.Context) {
	p := poller.NewPoller(
		s.cfg.Poller.SubscriptionPollingInterval,
		metrics.RecordPollerDuration("subscriptions", s.SyncSessions),
		poller.WithName("subscriptions"),
	)
	s.startPoller(ctx, p)
}

// SyncSessions starts, restarts or stops sessions so that exactly the active
// subscriptions are monitored with their stored settings.
func (s *Service) SyncSessions(ctx context.Context) error {
	subs, err := s.db.LoadSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load subscriptions: %w", err)
	}

	started := s.reconcile(ctx, subs)
	if started > 0 {
		log.Ctx(ctx).Info().Int("started", started).Msg("subscriptions synced")
	}
	return nil
}

// reconcile returns the number of sessions it (re)started.
func (s *Service) reconcile(ctx context.Context, subs []model.SubscriptionDocument) int {
	wanted := make(map[string]types.SubscriptionConfig, len(subs))
	for _, sub := range subs {
		if !sub.Active {
			continue
		}
		cfg, err := sub.ToConfig()
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("subscription", sub.ID).Msg("skipping subscription")
			continue
		}
		wanted[sub.ID] = s.withDefaults(cfg)
	}

	for _, id := range s.sessions.IDs() {
		if _, ok := wanted[id]; !ok {
			s.sessions.Stop(id)
			log.Ctx(ctx).Info().Str("subscription", id).Msg("monitoring session stopped")
		}
	}

	started := 0
	for id, cfg := range wanted {
		if sameSettings(s.sessions.Status(id), cfg) {
			continue
		}
		if err := s.sessions.Start(ctx, id, cfg); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("subscription", id).Msg("failed to start monitoring session")
			continue
		}
		started++
	}
	return started
}

func (s *Service) withDefaults(cfg types.SubscriptionConfig) types.SubscriptionConfig {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = s.cfg.Monitor.PollInterval
	}
	return cfg
}

func sameSettings(status types.SessionStatus, cfg types.SubscriptionConfig) bool {
	return status.IsActive() &&
		status.ThresholdFiat == cfg.ThresholdFiat.String() &&
		status.PollIntervalMilli == cfg.PollInterval.Milliseconds()
}
