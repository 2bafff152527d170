package services

import (
	"context"

	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/db"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/internal/utils/poller"
	"github.com/sourcegraph/conc"
)

//go:generate mockery --name=SessionManager --output=../../tests/mocks --outpkg=mocks --filename=mock_session_manager.go
type SessionManager interface {
	Start(ctx context.Context, id string, cfg types.SubscriptionConfig) error
	Stop(id string) bool
	StopAll()
	Wait()
	Status(id string) types.SessionStatus
	IDs() []string
	ActiveCount() int
}

type StatsProvider interface {
	GetTotalStaking(ctx context.Context, forceRefresh bool) (*types.StatsSnapshot, error)
	CacheStatus() types.CacheStatus
}

type Service struct {
	cfg      *config.Config
	db       db.DbInterface
	sui      suiclient.SuiInterface
	sessions SessionManager
	stats    StatsProvider

	pollers []*poller.Poller
	wg      conc.WaitGroup
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	sui suiclient.SuiInterface,
	sessions SessionManager,
	stats StatsProvider,
) *Service {
	return &Service{
		cfg:      cfg,
		db:       db,
		sui:      sui,
		sessions: sessions,
		stats:    stats,
	}
}

// StartMonitoring resumes the stored subscriptions and starts the background
// pollers. It returns once the initial bootstrap is done.
func (s *Service) StartMonitoring(ctx context.Context) error {
	if err := s.BootstrapSessions(ctx); err != nil {
		return err
	}

	s.StartSubscriptionPoller(ctx)
	if !s.cfg.Poller.DisableStatsPoller {
		s.StartStatsPoller(ctx)
	}
	return nil
}

// Shutdown stops the pollers and every session, then waits for in-flight
// cycles to finish.
func (s *Service) Shutdown() {
	for _, p := range s.pollers {
		p.Stop()
	}
	s.wg.Wait()

	s.sessions.StopAll()
	s.sessions.Wait()
}

func (s *Service) startPoller(ctx context.Context, p *poller.Poller) {
	s.pollers = append(s.pollers, p)
	s.wg.Go(func() {
		p.Start(ctx)
	})
}
