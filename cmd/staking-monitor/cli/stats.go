package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/overtake-labs/staking-monitor/internal/cache"
	"github.com/overtake-labs/staking-monitor/internal/clients/coingecko"
	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/observability/tracing"
	"github.com/overtake-labs/staking-monitor/internal/price"
	"github.com/overtake-labs/staking-monitor/internal/stats"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func StatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Computes lifetime staking totals from the full event history and prints them as JSON",
		Args:  cobra.ExactArgs(0),
		RunE:  printStats,
	}

	return cmd
}

type statsDeps struct {
	sui        suiclient.SuiInterface
	oracle     *price.Oracle
	aggregator *stats.Aggregator
}

// newStatsDeps builds the ledger client, the price oracle and the stats
// aggregator, backed by the redis snapshot store when one is configured.
func newStatsDeps(ctx context.Context, cfg *config.Config) (*statsDeps, func(), error) {
	suiClient, err := suiclient.NewSuiClient(ctx, &cfg.Sui)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create sui client: %w", err)
	}
	sui := suiclient.NewSuiClientWithMetrics(suiClient)
	cleanups := []func(){suiClient.Close}

	var (
		oracleOpts []price.Option
		statsOpts  []stats.Option
	)
	if cfg.Redis != nil {
		store := cache.NewRedisStore(cfg.Redis)
		if err := store.Ping(ctx); err != nil {
			// snapshots are a fallback, the monitor works without them
			log.Ctx(ctx).Warn().Err(err).Msg("redis is not reachable, snapshots may be unavailable")
		}
		cleanups = append(cleanups, func() {
			if err := store.Close(); err != nil {
				log.Ctx(ctx).Error().Err(err).Msg("failed to close redis client")
			}
		})
		oracleOpts = append(oracleOpts, price.WithSnapshotStore(store))
		statsOpts = append(statsOpts, stats.WithSnapshotStore(store))
	}

	oracle := price.NewOracle(coingecko.NewClient(&cfg.Price), cfg.Price.CacheTTL, oracleOpts...)
	aggregator := stats.NewAggregator(sui, oracle, &cfg.Sui, &cfg.Stats, statsOpts...)

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	return &statsDeps{sui: sui, oracle: oracle, aggregator: aggregator}, cleanup, nil
}

func printStats(cmd *cobra.Command, args []string) error {
	ctx := tracing.InjectTraceID(cmd.Context())

	cfg, err := config.New(GetConfigPath())
	if err != nil {
		return err
	}

	deps, cleanup, err := newStatsDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	snapshot, err := deps.aggregator.GetTotalStaking(ctx, true)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
