package db

import (
	"context"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/db/model"
	"github.com/overtake-labs/staking-monitor/internal/observability/metrics"
	"github.com/overtake-labs/staking-monitor/internal/utils"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) LoadSubscriptions(ctx context.Context) (result []model.SubscriptionDocument, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.db.LoadSubscriptions(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) SaveSubscription(ctx context.Context, sub *model.SubscriptionDocument) error {
	return d.run(func() error {
		return d.db.SaveSubscription(ctx, sub)
	})
}

func (d *DbWithMetrics) DeleteSubscription(ctx context.Context, id string) error {
	return d.run(func() error {
		return d.db.DeleteSubscription(ctx, id)
	})
}

func (d *DbWithMetrics) GetSubscription(ctx context.Context, id string) (result *model.SubscriptionDocument, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.db.GetSubscription(ctx, id)
		return err
	})
	return
}

func (d *DbWithMetrics) CountActiveSubscriptions(ctx context.Context) (result int64, err error) {
	//nolint:errcheck
	d.run(func() error {
		result, err = d.db.CountActiveSubscriptions(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) run(f func() error) error {
	method := utils.GetFunctionName(1)
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
