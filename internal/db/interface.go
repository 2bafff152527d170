package db

import (
	"context"

	"github.com/overtake-labs/staking-monitor/internal/db/model"
)

//go:generate mockery --name=DbInterface --output=../../tests/mocks --outpkg=mocks --filename=mock_db_client.go
type DbInterface interface {
	Ping(ctx context.Context) error
	// LoadSubscriptions returns every stored subscription, active or not.
	LoadSubscriptions(ctx context.Context) ([]model.SubscriptionDocument, error)
	// SaveSubscription upserts the document, refreshing last_updated and
	// keeping the original created_at.
	SaveSubscription(ctx context.Context, sub *model.SubscriptionDocument) error
	// DeleteSubscription returns a NotFoundError when id does not exist.
	DeleteSubscription(ctx context.Context, id string) error
	// GetSubscription returns a NotFoundError when id does not exist.
	GetSubscription(ctx context.Context, id string) (*model.SubscriptionDocument, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
}
