package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/observability/tracing"
	"github.com/overtake-labs/staking-monitor/internal/staking"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/internal/utils/digestset"
	"github.com/overtake-labs/staking-monitor/internal/utils/poller"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc"
)

type FiatConverter interface {
	ConvertToFiat(ctx context.Context, amount decimal.Decimal) decimal.Decimal
}

type AlertDispatcher interface {
	Dispatch(
		ctx context.Context,
		sessionID string,
		classified *types.ClassifiedTransaction,
		amount, fiat decimal.Decimal,
	) error
}

// Manager owns one monitoring session per subscription id.
type Manager struct {
	sui        suiclient.SuiInterface
	classifier *staking.Classifier
	extractor  *staking.Extractor
	prices     FiatConverter
	alerts     AlertDispatcher
	suiCfg     *config.SuiConfig
	cfg        *config.MonitorConfig

	mu       sync.Mutex
	sessions map[string]*session
	wg       conc.WaitGroup
}

type session struct {
	id     string
	cfg    types.SubscriptionConfig
	seen   *digestset.Set
	poller *poller.Poller
}

func NewManager(
	sui suiclient.SuiInterface,
	prices FiatConverter,
	alerts AlertDispatcher,
	suiCfg *config.SuiConfig,
	cfg *config.MonitorConfig,
) *Manager {
	return &Manager{
		sui:        sui,
		classifier: staking.NewClassifier(suiCfg.PackageID, suiCfg.Module),
		extractor:  staking.NewExtractor(suiCfg.PackageIDs(), suiCfg.Module, suiCfg.CoinType),
		prices:     prices,
		alerts:     alerts,
		suiCfg:     suiCfg,
		cfg:        cfg,
		sessions:   make(map[string]*session),
	}
}

// Start (re)starts the session of id. An existing session is stopped first and
// its dedup memory discarded. The first cycle runs immediately. The session
// keeps the values of ctx but not its cancellation, so it runs until Stop or
// StopAll even when ctx belongs to a finished request.
func (m *Manager) Start(ctx context.Context, id string, subCfg types.SubscriptionConfig) error {
	if id == "" {
		return errors.New("session id is required")
	}
	if subCfg.ThresholdFiat.IsNegative() {
		return fmt.Errorf("threshold must not be negative, got %s", subCfg.ThresholdFiat)
	}
	if subCfg.PollInterval <= 0 {
		subCfg.PollInterval = m.cfg.PollInterval
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopLocked(id)

	s := &session{
		id:   id,
		cfg:  subCfg,
		seen: digestset.New(m.cfg.DigestCapacity),
	}
	s.poller = poller.NewPoller(
		subCfg.PollInterval,
		metrics.RecordPollerDuration("monitor_cycle", func(ctx context.Context) error {
			return m.runCycle(ctx, s)
		}),
		poller.WithImmediateStart(),
		poller.WithName("monitor-"+id),
	)
	m.sessions[id] = s

	sessionCtx := tracing.InjectSessionID(context.WithoutCancel(ctx), id)
	m.wg.Go(func() {
		s.poller.Start(sessionCtx)
		m.forget(s)
	})

	log.Ctx(sessionCtx).Info().
		Str("threshold", subCfg.ThresholdFiat.String()).
		Dur("interval", subCfg.PollInterval).
		Msg("monitoring session started")
	metrics.RecordActiveSessions(len(m.sessions))
	return nil
}

// Stop prevents future cycles of id. A cycle already running finishes.
// Stopping an unknown id is a no-op and returns false.
func (m *Manager) Stop(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	stopped := m.stopLocked(id)
	metrics.RecordActiveSessions(len(m.sessions))
	return stopped
}

func (m *Manager) stopLocked(id string) bool {
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	s.poller.Stop()
	delete(m.sessions, id)
	return true
}

// forget drops s once its poller returned, unless it was already replaced.
func (m *Manager) forget(s *session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.sessions[s.id]; ok && current == s {
		delete(m.sessions, s.id)
		metrics.RecordActiveSessions(len(m.sessions))
	}
}

func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.sessions {
		m.stopLocked(id)
	}
	metrics.RecordActiveSessions(0)
}

// Wait blocks until every session goroutine returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) Status(id string) types.SessionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return types.SessionStatus{ID: id, State: types.SessionStopped}
	}
	return types.SessionStatus{
		ID:                id,
		State:             types.SessionRunning,
		ProcessedTxCount:  s.seen.Len(),
		ThresholdFiat:     s.cfg.ThresholdFiat.String(),
		PollIntervalMilli: s.cfg.PollInterval.Milliseconds(),
	}
}

func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// IDs returns the ids of the running sessions in no particular order.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// runCycle polls the monitored functions one after another.
func (m *Manager) runCycle(ctx context.Context, s *session) error {
	ctx = tracing.InjectTraceID(ctx)
	start := time.Now()

	var errs []error
	for _, function := range types.MonitoredFunctions() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.processFunction(ctx, s, function); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("function", function.String()).Msg("skipping function for this cycle")
			errs = append(errs, err)
		}
	}

	log.Ctx(ctx).Debug().
		Int("processed", s.seen.Len()).
		Dur("took", time.Since(start)).
		Msg("monitor cycle finished")
	return errors.Join(errs...)
}
