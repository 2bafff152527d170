package monitor

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/overtake-labs/staking-monitor/internal/clients/suiclient"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/staking"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/overtake-labs/staking-monitor/internal/utils"
	"github.com/rs/zerolog/log"
)

const (
	outcomeUnclassified   = "unclassified"
	outcomeNoAmount       = "no_amount"
	outcomeBelowThreshold = "below_threshold"
	outcomeAlerted        = "alerted"
)

func (m *Manager) processFunction(ctx context.Context, s *session, function types.StakingFunction) error {
	page, err := m.fetchLatest(ctx, function)
	if err != nil {
		metrics.RecordPageFetchError("tx:" + function.String())
		return err
	}

	newCount, skipped := 0, 0
	// pages come newest first, alerts go out oldest first
	for i := len(page.Data) - 1; i >= 0; i-- {
		tx := &page.Data[i]
		if s.seen.Has(tx.Digest) {
			skipped++
			continue
		}
		newCount++
		m.processTransaction(ctx, s, tx, function)
	}

	if newCount > 0 || skipped > 0 {
		log.Ctx(ctx).Debug().
			Str("function", function.String()).
			Int("new", newCount).
			Int("skipped", skipped).
			Int("malformed", page.Skipped).
			Msg("processed transaction page")
	}
	return nil
}

// fetchLatest reads the most recent page of calls to function, retrying
// transient failures with a fixed delay.
func (m *Manager) fetchLatest(ctx context.Context, function types.StakingFunction) (*suiclient.TransactionPage, error) {
	page, err := retry.DoWithData(
		func() (*suiclient.TransactionPage, error) {
			return m.sui.QueryTransactionBlocks(
				ctx, m.suiCfg.PackageID, m.suiCfg.Module, function.String(), nil, m.cfg.PageSize, true,
			)
		},
		retry.Context(ctx),
		retry.Attempts(m.cfg.FetchAttempts),
		retry.Delay(m.cfg.FetchRetryInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", m.cfg.FetchAttempts).
				Str("function", function.String()).
				Err(err).
				Msg("failed to fetch transactions")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching %s transactions: %w: %w", function, types.ErrExhaustedRetries, err)
	}
	return page, nil
}

func (m *Manager) processTransaction(
	ctx context.Context, s *session, tx *suiclient.TransactionBlock, function types.StakingFunction,
) {
	classified, ok := m.classifier.Classify(tx)
	if !ok {
		metrics.RecordProcessedTx(function.String(), outcomeUnclassified)
		return
	}
	// recorded before extraction and delivery so that a failure later on can
	// never cause a second alert
	s.seen.Add(classified.Digest)

	logger := log.Ctx(ctx).With().
		Str("digest", utils.ShortDigest(classified.Digest)).
		Str("function", classified.Function.String()).
		Logger()

	amount, source := m.extractor.Extract(tx, classified)
	if !amount.IsPositive() {
		logger.Warn().Msg("could not determine staked amount")
		metrics.RecordProcessedTx(function.String(), outcomeNoAmount)
		return
	}

	human := staking.ToHuman(amount)
	fiat := m.prices.ConvertToFiat(ctx, human)
	if fiat.LessThan(s.cfg.ThresholdFiat) {
		logger.Debug().
			Str("amount", human.StringFixed(2)).
			Str("fiat", fiat.StringFixed(2)).
			Msg("below threshold")
		metrics.RecordProcessedTx(function.String(), outcomeBelowThreshold)
		return
	}

	logger.Info().
		Str("amount", human.StringFixed(2)).
		Str("fiat", fiat.StringFixed(2)).
		Str("source", string(source)).
		Msg("threshold reached, dispatching alert")
	metrics.RecordProcessedTx(function.String(), outcomeAlerted)

	if err := m.alerts.Dispatch(ctx, s.id, classified, human, fiat); err != nil {
		logger.Debug().Err(err).Msg("alert not delivered")
	}
}
