package price

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/clients/coingecko"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/tests/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func marketData(price string) *coingecko.MarketData {
	return &coingecko.MarketData{
		Price:             dec(price),
		CirculatingSupply: decimal.NewNullDecimal(dec("200000000")),
		TotalSupply:       decimal.NewNullDecimal(dec("1000000000")),
	}
}

func TestGetPrice(t *testing.T) {
	ctx := t.Context()
	const ttl = 30 * time.Second

	t.Run("one upstream call within ttl", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.28"), nil).Once()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		oracle := NewOracle(provider, ttl, WithClock(clock.Now))

		first := oracle.GetPrice(ctx)
		clock.Advance(ttl - time.Second)
		second := oracle.GetPrice(ctx)

		assert.True(t, first.Price.Equal(dec("0.28")))
		assert.Equal(t, first, second)
		assert.True(t, first.CirculatingSupply.Equal(dec("200000000")))
		// absent max supply falls back to the default
		assert.True(t, first.MaxSupply.Equal(defaultMaxSupply))
	})

	t.Run("refresh after ttl", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.28"), nil).Once()
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.30"), nil).Once()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		oracle := NewOracle(provider, ttl, WithClock(clock.Now))

		oracle.GetPrice(ctx)
		clock.Advance(ttl)
		snapshot := oracle.GetPrice(ctx)

		assert.True(t, snapshot.Price.Equal(dec("0.30")))
		assert.Equal(t, clock.Now(), snapshot.FetchedAt)
	})

	t.Run("failure serves previous snapshot unchanged", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.28"), nil).Once()
		provider.On("GetMarketData", mock.Anything).Return(nil, errors.New("boom"))
		provider.On("GetSimplePrice", mock.Anything).Return(decimal.Zero, errors.New("boom"))
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		oracle := NewOracle(provider, ttl, WithClock(clock.Now))

		fresh := oracle.GetPrice(ctx)
		clock.Advance(time.Hour)
		stale := oracle.GetPrice(ctx)

		assert.Equal(t, fresh, stale)
	})

	t.Run("simple fallback keeps circulating supply", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.28"), nil).Once()
		provider.On("GetMarketData", mock.Anything).Return(nil, types.ErrMalformedData).Once()
		provider.On("GetSimplePrice", mock.Anything).Return(dec("0.35"), nil).Once()
		clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
		oracle := NewOracle(provider, ttl, WithClock(clock.Now))

		oracle.GetPrice(ctx)
		clock.Advance(ttl)
		snapshot := oracle.GetPrice(ctx)

		assert.True(t, snapshot.Price.Equal(dec("0.35")))
		assert.True(t, snapshot.CirculatingSupply.Equal(dec("200000000")))
		assert.True(t, snapshot.TotalSupply.Equal(defaultTotalSupply))
	})

	t.Run("rate limit skips the simple query", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).
			Return(nil, &types.RateLimitError{RetryAfter: time.Minute}).Once()
		oracle := NewOracle(provider, ttl)

		snapshot := oracle.GetPrice(ctx)

		provider.AssertNotCalled(t, "GetSimplePrice", mock.Anything)
		assert.Equal(t, DefaultSnapshot(), snapshot)
	})

	t.Run("default without any history", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(nil, errors.New("down"))
		provider.On("GetSimplePrice", mock.Anything).Return(decimal.Zero, errors.New("down"))
		oracle := NewOracle(provider, ttl)

		snapshot := oracle.GetPrice(ctx)
		assert.True(t, snapshot.Price.Equal(dec("0.28")))
		assert.True(t, snapshot.CirculatingSupply.Equal(dec("176838068")))
		assert.True(t, snapshot.TotalSupply.Equal(dec("1000000000")))
		assert.True(t, snapshot.MaxSupply.Equal(dec("1000000000")))
	})

	t.Run("persisted snapshot before default", func(t *testing.T) {
		stored := &types.PriceSnapshot{Price: dec("0.4"), CirculatingSupply: dec("1"), FetchedAt: time.Unix(1, 0)}
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(nil, &types.RateLimitError{})
		store := mocks.NewSnapshotStore(t)
		store.On("LoadPriceSnapshot", mock.Anything).Return(stored, nil).Once()
		oracle := NewOracle(provider, ttl, WithSnapshotStore(store))

		assert.Equal(t, stored, oracle.GetPrice(ctx))
		// loaded snapshot is now the in-memory fallback
		assert.Equal(t, stored, oracle.GetPrice(ctx))
	})

	t.Run("successful refresh is persisted", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.28"), nil).Once()
		store := mocks.NewSnapshotStore(t)
		store.On("SavePriceSnapshot", mock.Anything, mock.MatchedBy(func(s *types.PriceSnapshot) bool {
			return s.Price.Equal(dec("0.28"))
		})).Return(errors.New("redis down")).Once()
		oracle := NewOracle(provider, ttl, WithSnapshotStore(store))

		assert.True(t, oracle.GetPrice(ctx).Price.Equal(dec("0.28")))
	})
}

func TestGetPriceSingleFlight(t *testing.T) {
	provider := mocks.NewPriceProvider(t)
	provider.On("GetMarketData", mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(20 * time.Millisecond) }).
		Return(marketData("0.28"), nil).Once()
	oracle := NewOracle(provider, time.Minute)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			oracle.GetPrice(t.Context())
		}()
	}
	wg.Wait()
}

func TestConversions(t *testing.T) {
	ctx := t.Context()

	t.Run("to and from fiat", func(t *testing.T) {
		provider := mocks.NewPriceProvider(t)
		provider.On("GetMarketData", mock.Anything).Return(marketData("0.28"), nil).Once()
		oracle := NewOracle(provider, time.Minute)

		assert.Equal(t, "11200.00", oracle.ConvertToFiat(ctx, dec("40000")).StringFixed(2))
		assert.Equal(t, "100.00", oracle.ConvertFromFiat(ctx, dec("28")).StringFixed(2))
		assert.True(t, oracle.CirculatingSupply(ctx).Equal(dec("200000000")))
	})

	t.Run("from fiat with non positive price", func(t *testing.T) {
		oracle := NewOracle(nil, time.Minute)
		oracle.cached = &types.PriceSnapshot{Price: decimal.Zero, FetchedAt: time.Now()}

		require.True(t, oracle.ConvertFromFiat(ctx, dec("100")).IsZero())
	})
}
