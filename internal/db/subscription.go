package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/db/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (db *Database) LoadSubscriptions(ctx context.Context) ([]model.SubscriptionDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := db.collection(model.SubscriptionsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var subs []model.SubscriptionDocument
	if err := cursor.All(ctx, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (db *Database) SaveSubscription(ctx context.Context, sub *model.SubscriptionDocument) error {
	now := time.Now().Unix()
	filter := bson.M{"_id": sub.ID}
	update := bson.M{
		"$set": bson.M{
			"threshold_fiat":   sub.ThresholdFiat,
			"poll_interval_ms": sub.PollIntervalMs,
			"active":           sub.Active,
			"last_updated":     now,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := db.collection(model.SubscriptionsCollection).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save subscription %s: %w", sub.ID, err)
	}
	return nil
}

func (db *Database) DeleteSubscription(ctx context.Context, id string) error {
	res, err := db.collection(model.SubscriptionsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return &NotFoundError{
			Key:     id,
			Message: fmt.Sprintf("subscription %s not found", id),
		}
	}
	return nil
}

func (db *Database) GetSubscription(ctx context.Context, id string) (*model.SubscriptionDocument, error) {
	var sub model.SubscriptionDocument
	err := db.collection(model.SubscriptionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, &NotFoundError{
				Key:     id,
				Message: fmt.Sprintf("subscription %s not found", id),
			}
		}
		return nil, err
	}
	return &sub, nil
}

func (db *Database) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	return db.collection(model.SubscriptionsCollection).CountDocuments(ctx, bson.M{"active": true})
}
