package services

import (
	"context"
	"fmt"

	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/observability/tracing"
	"github.com/overtake-labs/staking-monitor/internal/utils/poller"
	"github.com/rs/zerolog/log"
)

// StartStatsPoller keeps the lifetime stats cache warm so that API reads
// rarely pay for a full event history walk.
func (s *Service) StartStatsPoller(ctx context.Context) {
	p := poller.NewPoller(
		s.cfg.Poller.StatsPollingInterval,
		metrics.RecordPollerDuration("stats", s.refreshStats),
		poller.WithImmediateStart(),
		poller.WithName("stats"),
	)
	s.startPoller(ctx, p)
}

func (s *Service) refreshStats(ctx context.Context) error {
	ctx = tracing.InjectTraceID(ctx)

	snapshot, err := s.stats.GetTotalStaking(ctx, true)
	if err != nil {
		return fmt.Errorf("failed to refresh staking stats: %w", err)
	}

	log.Ctx(ctx).Info().
		Str("net_staked", snapshot.NetStaked.StringFixed(2)).
		Str("net_staked_fiat", snapshot.NetStakedFiat.StringFixed(2)).
		Int("deposits", snapshot.DepositCount).
		Int("claims", snapshot.ClaimCount).
		Bool("partial", snapshot.Partial).
		Msg("Updated staking stats")
	return nil
}
