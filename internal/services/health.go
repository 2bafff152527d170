package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/overtake-labs/staking-monitor/internal/types"
)

type HealthStatus struct {
	LatestCheckpoint uint64 `json:"latest_checkpoint"`
	ActiveSessions   int    `json:"active_sessions"`
}

// Health reports an error when the subscription store or the ledger RPC is
// not reachable.
func (s *Service) Health(ctx context.Context) (*HealthStatus, error) {
	var errs []error
	if err := s.db.Ping(ctx); err != nil {
		errs = append(errs, fmt.Errorf("db: %w", err))
	}

	checkpoint, err := s.sui.GetLatestCheckpoint(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("sui: %w", err))
	}

	return &HealthStatus{
		LatestCheckpoint: checkpoint,
		ActiveSessions:   s.sessions.ActiveCount(),
	}, errors.Join(errs...)
}

func (s *Service) Stats(ctx context.Context, forceRefresh bool) (*types.StatsSnapshot, error) {
	return s.stats.GetTotalStaking(ctx, forceRefresh)
}

func (s *Service) StatsCacheStatus() types.CacheStatus {
	return s.stats.CacheStatus()
}
