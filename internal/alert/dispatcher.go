package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

//go:generate mockery --name=Notifier --output=../../tests/mocks --outpkg=mocks --filename=mock_notifier.go
type Notifier interface {
	Send(ctx context.Context, destination, text string) error
}

//go:generate mockery --name=EventPublisher --output=../../tests/mocks --outpkg=mocks --filename=mock_event_publisher.go
type EventPublisher interface {
	PublishAlertEvent(ctx context.Context, event *types.AlertEvent) error
}

type Option func(*Dispatcher)

func WithEventPublisher(publisher EventPublisher) Option {
	return func(d *Dispatcher) {
		d.publisher = publisher
	}
}

type Dispatcher struct {
	notifier  Notifier
	publisher EventPublisher
	cfg       *config.TelegramConfig
}

func NewDispatcher(notifier Notifier, cfg *config.TelegramConfig, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		notifier: notifier,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends one alert to the session destination. Only rate limited
// deliveries are retried; a failed alert is dropped after logging.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	sessionID string,
	classified *types.ClassifiedTransaction,
	amount, fiat decimal.Decimal,
) error {
	message := FormatMessage(classified, amount, fiat, d.cfg.ExplorerTxURL)

	var attempts uint
	err := retry.Do(
		func() error {
			attempts++
			return d.notifier.Send(ctx, sessionID, message)
		},
		retry.Context(ctx),
		retry.Attempts(d.cfg.DeliveryAttempts),
		retry.RetryIf(types.IsRateLimited),
		retry.DelayType(d.rateLimitDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", d.cfg.DeliveryAttempts).
				Err(err).
				Msg("alert delivery rate limited")
		}),
	)
	if err != nil && types.IsRateLimited(err) {
		err = fmt.Errorf("%w: %w", types.ErrExhaustedRetries, err)
	}

	metrics.RecordAlert(classified.Function.String(), err == nil)
	d.publish(ctx, sessionID, classified, amount, fiat, attempts, err)

	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("digest", classified.Digest).
			Str("function", classified.Function.String()).
			Uint("attempts", attempts).
			Msg("alert dropped")
		return fmt.Errorf("failed to deliver alert for %s: %w", classified.Digest, err)
	}

	log.Ctx(ctx).Info().
		Str("digest", classified.Digest).
		Str("function", classified.Function.String()).
		Str("amount", amount.StringFixed(2)).
		Str("fiat", fiat.StringFixed(2)).
		Msg("alert delivered")
	return nil
}

// rateLimitDelay waits for the provider suggested time plus a safety margin.
func (d *Dispatcher) rateLimitDelay(_ uint, err error, _ *retry.Config) time.Duration {
	wait, ok := types.RetryAfter(err)
	if !ok {
		wait = d.cfg.DefaultRetryWait
	}
	return wait + d.cfg.RetryMargin
}

func (d *Dispatcher) publish(
	ctx context.Context,
	sessionID string,
	classified *types.ClassifiedTransaction,
	amount, fiat decimal.Decimal,
	attempts uint,
	deliveryErr error,
) {
	if d.publisher == nil {
		return
	}

	event := &types.AlertEvent{
		SessionID:    sessionID,
		Function:     classified.Function,
		Digest:       classified.Digest,
		Sender:       classified.Sender,
		Amount:       amount,
		FiatValue:    fiat,
		Status:       types.AlertDelivered,
		Attempts:     attempts,
		DispatchedAt: time.Now().UTC(),
	}
	if deliveryErr != nil {
		event.Status = types.AlertFailed
		event.Error = deliveryErr.Error()
	}

	if err := d.publisher.PublishAlertEvent(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		log.Ctx(ctx).Warn().Err(err).Str("digest", classified.Digest).Msg("failed to publish alert event")
	}
}
