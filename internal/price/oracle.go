package price

import (
	"context"
	"sync"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/clients/coingecko"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	sourceSimple  = "simple"
	sourceStale   = "stale"
	sourceStore   = "store"
	sourceDefault = "default"
)

var (
	defaultPrice             = decimal.RequireFromString("0.28")
	defaultCirculatingSupply = decimal.NewFromInt(176_838_068)
	defaultTotalSupply       = decimal.NewFromInt(1_000_000_000)
	defaultMaxSupply         = decimal.NewFromInt(1_000_000_000)
)

// DefaultSnapshot is served when no live, cached or persisted price exists.
func DefaultSnapshot() *types.PriceSnapshot {
	return &types.PriceSnapshot{
		Price:             defaultPrice,
		CirculatingSupply: defaultCirculatingSupply,
		TotalSupply:       defaultTotalSupply,
		MaxSupply:         defaultMaxSupply,
	}
}

//go:generate mockery --name=SnapshotStore --output=../../tests/mocks --outpkg=mocks --filename=mock_price_snapshot_store.go
type SnapshotStore interface {
	SavePriceSnapshot(ctx context.Context, snapshot *types.PriceSnapshot) error
	// LoadPriceSnapshot returns nil without error when nothing is stored.
	LoadPriceSnapshot(ctx context.Context) (*types.PriceSnapshot, error)
}

type Option func(*Oracle)

func WithSnapshotStore(store SnapshotStore) Option {
	return func(o *Oracle) {
		o.store = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Oracle) {
		o.now = now
	}
}

// Oracle caches the token price for a fixed TTL. It never returns an error:
// when the provider fails the last known snapshot, or a default, is served.
type Oracle struct {
	provider coingecko.PriceProvider
	ttl      time.Duration
	store    SnapshotStore
	now      func() time.Time

	// mu is held across check and refresh so concurrent misses share one
	// upstream call
	mu     sync.Mutex
	cached *types.PriceSnapshot
}

func NewOracle(provider coingecko.PriceProvider, ttl time.Duration, opts ...Option) *Oracle {
	o := &Oracle{
		provider: provider,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Oracle) GetPrice(ctx context.Context) *types.PriceSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cached != nil && o.now().Sub(o.cached.FetchedAt) < o.ttl {
		return copySnapshot(o.cached)
	}

	snapshot, err := o.fetch(ctx)
	if err == nil {
		o.cached = snapshot
		metrics.RecordPrice(snapshot.Price.InexactFloat64())
		o.persist(ctx, snapshot)
		return copySnapshot(snapshot)
	}

	if o.cached != nil {
		log.Ctx(ctx).Warn().Err(err).
			Time("fetched_at", o.cached.FetchedAt).
			Msg("price refresh failed, serving stale snapshot")
		metrics.RecordPriceFallback(sourceStale)
		return copySnapshot(o.cached)
	}

	if stored := o.loadPersisted(ctx); stored != nil {
		log.Ctx(ctx).Warn().Err(err).
			Time("fetched_at", stored.FetchedAt).
			Msg("price refresh failed, serving persisted snapshot")
		metrics.RecordPriceFallback(sourceStore)
		o.cached = stored
		return copySnapshot(stored)
	}

	log.Ctx(ctx).Warn().Err(err).Msg("price refresh failed, serving default price")
	metrics.RecordPriceFallback(sourceDefault)
	return DefaultSnapshot()
}

// fetch queries the detailed endpoint and falls back to the simple one,
// except when the provider is throttling us.
func (o *Oracle) fetch(ctx context.Context) (*types.PriceSnapshot, error) {
	data, err := o.provider.GetMarketData(ctx)
	if err == nil {
		return &types.PriceSnapshot{
			Price:             data.Price,
			CirculatingSupply: o.supplyOrFallback(data.CirculatingSupply, o.previousCirculating()),
			TotalSupply:       o.supplyOrFallback(data.TotalSupply, defaultTotalSupply),
			MaxSupply:         o.supplyOrFallback(data.MaxSupply, defaultMaxSupply),
			FetchedAt:         o.now(),
		}, nil
	}
	if types.IsRateLimited(err) {
		return nil, err
	}

	log.Ctx(ctx).Debug().Err(err).Msg("detailed price query failed, trying simple query")
	price, simpleErr := o.provider.GetSimplePrice(ctx)
	if simpleErr != nil {
		return nil, simpleErr
	}
	metrics.RecordPriceFallback(sourceSimple)

	return &types.PriceSnapshot{
		Price:             price,
		CirculatingSupply: o.previousCirculating(),
		TotalSupply:       defaultTotalSupply,
		MaxSupply:         defaultMaxSupply,
		FetchedAt:         o.now(),
	}, nil
}

func (o *Oracle) supplyOrFallback(v decimal.NullDecimal, fallback decimal.Decimal) decimal.Decimal {
	if v.Valid && v.Decimal.IsPositive() {
		return v.Decimal
	}
	return fallback
}

func (o *Oracle) previousCirculating() decimal.Decimal {
	if o.cached != nil && o.cached.CirculatingSupply.IsPositive() {
		return o.cached.CirculatingSupply
	}
	return defaultCirculatingSupply
}

func (o *Oracle) persist(ctx context.Context, snapshot *types.PriceSnapshot) {
	if o.store == nil {
		return
	}
	if err := o.store.SavePriceSnapshot(ctx, snapshot); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to persist price snapshot")
	}
}

func (o *Oracle) loadPersisted(ctx context.Context) *types.PriceSnapshot {
	if o.store == nil {
		return nil
	}
	snapshot, err := o.store.LoadPriceSnapshot(ctx)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("failed to load persisted price snapshot")
		return nil
	}
	if snapshot == nil || !snapshot.Price.IsPositive() {
		return nil
	}
	return snapshot
}

func (o *Oracle) ConvertToFiat(ctx context.Context, amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(o.GetPrice(ctx).Price)
}

// ConvertFromFiat returns zero when the price is not positive.
func (o *Oracle) ConvertFromFiat(ctx context.Context, fiat decimal.Decimal) decimal.Decimal {
	price := o.GetPrice(ctx).Price
	if !price.IsPositive() {
		return decimal.Zero
	}
	return fiat.Div(price)
}

func (o *Oracle) CirculatingSupply(ctx context.Context) decimal.Decimal {
	return o.GetPrice(ctx).CirculatingSupply
}

func copySnapshot(s *types.PriceSnapshot) *types.PriceSnapshot {
	c := *s
	return &c
}
