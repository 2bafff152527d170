package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrInvalidSubscription = errors.New("invalid subscription")

// SubscriptionView joins a stored subscription with its live session state.
type SubscriptionView struct {
	Subscription model.SubscriptionDocument `json:"subscription"`
	Session      types.SessionStatus        `json:"session"`
}

// Subscribe stores the subscription of id and (re)starts its session. A zero
// threshold means the configured default threshold.
func (s *Service) Subscribe(ctx context.Context, id string, cfg types.SubscriptionConfig) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidSubscription)
	}
	if cfg.ThresholdFiat.IsNegative() {
		return fmt.Errorf("%w: threshold must not be negative", ErrInvalidSubscription)
	}
	if cfg.ThresholdFiat.IsZero() {
		cfg.ThresholdFiat = decimal.NewFromFloat(s.cfg.Monitor.ThresholdFiat)
	}
	cfg = s.withDefaults(cfg)

	if err := s.db.SaveSubscription(ctx, model.NewSubscriptionDocument(id, cfg, true)); err != nil {
		return err
	}
	if err := s.sessions.Start(ctx, id, cfg); err != nil {
		return fmt.Errorf("failed to start session %s: %w", id, err)
	}

	log.Ctx(ctx).Info().Str("subscription", id).Str("threshold", cfg.ThresholdFiat.String()).Msg("subscribed")
	return nil
}

// Unsubscribe stops the session of id and keeps its settings as inactive.
func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	sub, err := s.db.GetSubscription(ctx, id)
	if err != nil {
		return err
	}

	s.sessions.Stop(id)
	sub.Active = false
	if err := s.db.SaveSubscription(ctx, sub); err != nil {
		return err
	}

	log.Ctx(ctx).Info().Str("subscription", id).Msg("unsubscribed")
	return nil
}

// RemoveSubscription stops the session of id and deletes its settings.
func (s *Service) RemoveSubscription(ctx context.Context, id string) error {
	s.sessions.Stop(id)
	return s.db.DeleteSubscription(ctx, id)
}

func (s *Service) ListSubscriptions(ctx context.Context) ([]SubscriptionView, error) {
	subs, err := s.db.LoadSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]SubscriptionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, SubscriptionView{
			Subscription: sub,
			Session:      s.sessions.Status(sub.ID),
		})
	}
	return views, nil
}

func (s *Service) SessionStatus(id string) types.SessionStatus {
	return s.sessions.Status(id)
}
