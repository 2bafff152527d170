package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/redis/go-redis/v9"
)

const (
	priceSnapshotKey = "snapshot:price"
	statsSnapshotKey = "snapshot:stats"
)

// RedisStore persists the latest price and stats snapshots so that a
// restarted process has something better than defaults to serve.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(cfg *config.RedisConfig) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisStore{client: client, prefix: cfg.KeyPrefix}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) SavePriceSnapshot(ctx context.Context, snapshot *types.PriceSnapshot) error {
	return s.save(ctx, priceSnapshotKey, snapshot)
}

func (s *RedisStore) LoadPriceSnapshot(ctx context.Context) (*types.PriceSnapshot, error) {
	var snapshot types.PriceSnapshot
	found, err := s.load(ctx, priceSnapshotKey, &snapshot)
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

func (s *RedisStore) SaveStatsSnapshot(ctx context.Context, snapshot *types.StatsSnapshot) error {
	return s.save(ctx, statsSnapshotKey, snapshot)
}

func (s *RedisStore) LoadStatsSnapshot(ctx context.Context) (*types.StatsSnapshot, error) {
	var snapshot types.StatsSnapshot
	found, err := s.load(ctx, statsSnapshotKey, &snapshot)
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

func (s *RedisStore) save(ctx context.Context, key string, value any) (err error) {
	defer recordLatency("Set", time.Now(), &err)

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.client.Set(ctx, s.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, key string, value any) (found bool, err error) {
	defer recordLatency("Get", time.Now(), &err)

	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func recordLatency(method string, start time.Time, err *error) {
	metrics.RecordDbLatency(time.Since(start), "redis."+method, *err != nil)
}
