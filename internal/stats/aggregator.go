package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/avast/retry-go/v4"
	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/staking"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type PriceSource interface {
	GetPrice(ctx context.Context) *types.PriceSnapshot
}

type SnapshotStore interface {
	SaveStatsSnapshot(ctx context.Context, snapshot *types.StatsSnapshot) error
	// LoadStatsSnapshot returns nil without error when nothing is stored.
	LoadStatsSnapshot(ctx context.Context) (*types.StatsSnapshot, error)
}

type Option func(*Aggregator)

func WithSnapshotStore(store SnapshotStore) Option {
	return func(a *Aggregator) {
		a.store = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// Aggregator replays the deposit and claim history of every known package
// and caches the resulting totals.
type Aggregator struct {
	sui    suiclient.SuiInterface
	prices PriceSource
	suiCfg *config.SuiConfig
	cfg    *config.StatsConfig
	store  SnapshotStore
	now    func() time.Time

	mu       sync.Mutex
	cached   *types.StatsSnapshot
	cachedAt time.Time
}

func NewAggregator(
	sui suiclient.SuiInterface,
	prices PriceSource,
	suiCfg *config.SuiConfig,
	cfg *config.StatsConfig,
	opts ...Option,
) *Aggregator {
	a := &Aggregator{
		sui:    sui,
		prices: prices,
		suiCfg: suiCfg,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// streamResult is the outcome of walking one event stream.
type streamResult struct {
	total   sdkmath.Int
	count   int
	pages   int
	partial bool
}

// GetTotalStaking serves the cached snapshot while it is younger than the
// cache TTL, otherwise replays the full history.
func (a *Aggregator) GetTotalStaking(ctx context.Context, forceRefresh bool) (*types.StatsSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !forceRefresh && a.cached != nil && a.now().Sub(a.cachedAt) < a.cfg.CacheTTL {
		return copySnapshot(a.cached), nil
	}

	snapshot, err := a.compute(ctx)
	if err != nil {
		if a.cached != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("stats refresh failed, serving cached snapshot")
			return copySnapshot(a.cached), nil
		}
		if stored := a.loadPersisted(ctx); stored != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("stats refresh failed, serving persisted snapshot")
			return stored, nil
		}
		return nil, err
	}

	a.cached = snapshot
	a.cachedAt = snapshot.Timestamp
	a.persist(ctx, snapshot)
	return copySnapshot(snapshot), nil
}

func (a *Aggregator) compute(ctx context.Context) (*types.StatsSnapshot, error) {
	deposited, claimed := sdkmath.ZeroInt(), sdkmath.ZeroInt()
	depositCount, claimCount, pages := 0, 0, 0
	partial := false

	for _, packageID := range a.suiCfg.PackageIDs() {
		for _, eventType := range []types.EventType{types.EventDeposited, types.EventClaimed} {
			result, err := a.walkStream(ctx, eventType.MoveEventType(packageID, a.suiCfg.Module))
			if err != nil {
				return nil, err
			}
			pages += result.pages
			partial = partial || result.partial

			if eventType == types.EventDeposited {
				deposited = deposited.Add(result.total)
				depositCount += result.count
			} else {
				claimed = claimed.Add(result.total)
				claimCount += result.count
			}
		}
	}

	if pages == 0 {
		return nil, fmt.Errorf("no event page could be fetched: %w", types.ErrExhaustedRetries)
	}

	net := deposited.Sub(claimed)
	priceSnapshot := a.prices.GetPrice(ctx)
	netHuman := staking.ToHuman(net)

	snapshot := &types.StatsSnapshot{
		NetStaked:          netHuman,
		NetStakedFiat:      netHuman.Mul(priceSnapshot.Price),
		TotalDeposited:     staking.ToHuman(deposited),
		TotalClaimed:       staking.ToHuman(claimed),
		DepositCount:       depositCount,
		ClaimCount:         claimCount,
		Price:              priceSnapshot.Price,
		StakedRatio:        stakedRatio(netHuman, priceSnapshot.CirculatingSupply),
		Partial:            partial,
		Timestamp:          a.now(),
		NetStakedBase:      net,
		TotalDepositedBase: deposited,
		TotalClaimedBase:   claimed,
	}

	metrics.RecordNetStaked(snapshot.NetStaked.InexactFloat64(), snapshot.NetStakedFiat.InexactFloat64())
	log.Ctx(ctx).Info().
		Str("net_staked", snapshot.NetStaked.StringFixed(2)).
		Int("deposits", depositCount).
		Int("claims", claimCount).
		Bool("partial", partial).
		Msg("staking stats refreshed")
	return snapshot, nil
}

// walkStream pages through one event type, newest first. A page that keeps
// failing closes the stream with what was collected so far.
func (a *Aggregator) walkStream(ctx context.Context, moveEventType string) (*streamResult, error) {
	result := &streamResult{total: sdkmath.ZeroInt()}
	logger := log.Ctx(ctx).With().Str("event_type", moveEventType).Logger()

	var cursor json.RawMessage
	for result.pages < a.cfg.MaxPages {
		page, err := a.fetchPage(ctx, moveEventType, cursor)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn().Err(err).
				Int("pages", result.pages).
				Int("events", result.count).
				Msg("event stream closed early, keeping partial total")
			result.partial = true
			return result, nil
		}
		result.pages++

		for i := range page.Data {
			amount, ok := staking.HistoryAmount(page.Data[i].Fields())
			if !ok {
				continue
			}
			result.total = result.total.Add(amount)
			result.count++
		}

		if !page.HasNextPage || isNullCursor(page.NextCursor) {
			return result, nil
		}
		cursor = page.NextCursor
	}

	logger.Warn().Int("max_pages", a.cfg.MaxPages).Msg("event stream reached the page cap")
	result.partial = true
	return result, nil
}

// fetchPage retries the same cursor after a fixed delay. Errors count as
// consecutive because a successful page ends the retry loop.
func (a *Aggregator) fetchPage(
	ctx context.Context, moveEventType string, cursor json.RawMessage,
) (*suiclient.EventPage, error) {
	return retry.DoWithData(
		func() (*suiclient.EventPage, error) {
			return a.sui.QueryEvents(ctx, moveEventType, cursor, a.cfg.PageSize, true)
		},
		retry.Context(ctx),
		retry.Attempts(uint(a.cfg.MaxConsecutiveErrors)),
		retry.Delay(a.cfg.RetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			metrics.RecordPageFetchError("event:" + eventName(moveEventType))
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Int("max_attempts", a.cfg.MaxConsecutiveErrors).
				Str("cursor", utils.ShortDigest(string(cursor))).
				Err(err).
				Msg("failed to fetch event page")
		}),
	)
}

// ClearCache drops the cached snapshot so that the next call recomputes.
func (a *Aggregator) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cached = nil
	a.cachedAt = time.Time{}
}

func (a *Aggregator) CacheStatus() types.CacheStatus {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cached == nil {
		return types.CacheStatus{IsCached: false}
	}
	age := a.now().Sub(a.cachedAt)
	remaining := max(a.cfg.CacheTTL-age, 0)
	return types.CacheStatus{
		IsCached:         true,
		AgeSeconds:       int64(age / time.Second),
		RemainingSeconds: int64(remaining / time.Second),
	}
}

func (a *Aggregator) persist(ctx context.Context, snapshot *types.StatsSnapshot) {
	if a.store == nil {
		return
	}
	if err := a.store.SaveStatsSnapshot(ctx, snapshot); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to persist stats snapshot")
	}
}

func (a *Aggregator) loadPersisted(ctx context.Context) *types.StatsSnapshot {
	if a.store == nil {
		return nil
	}
	snapshot, err := a.store.LoadStatsSnapshot(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to load persisted stats snapshot")
		return nil
	}
	return snapshot
}

// stakedRatio is net staked as a percentage of the circulating supply.
func stakedRatio(net, circulating decimal.Decimal) decimal.Decimal {
	if !circulating.IsPositive() {
		return decimal.Zero
	}
	return net.Div(circulating).Mul(hundred)
}

func isNullCursor(cursor json.RawMessage) bool {
	return len(cursor) == 0 || string(cursor) == "null"
}

// eventName keeps the struct name of a fully qualified Move event type.
func eventName(moveEventType string) string {
	for i := len(moveEventType) - 1; i > 0; i-- {
		if moveEventType[i] == ':' {
			return moveEventType[i+1:]
		}
	}
	return moveEventType
}

func copySnapshot(s *types.StatsSnapshot) *types.StatsSnapshot {
	c := *s
	return &c
}
