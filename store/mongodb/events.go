package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/subman/subscription"
)

// WebhookEventStore implements subscription.EventLedger on the
// webhook_events collection, using the provider event ID as the
// document ID so the insert itself is the deduplication point.
type WebhookEventStore struct {
	coll *mongo.Collection
}

// NewWebhookEventStore creates an event ledger backed by db.
func NewWebhookEventStore(db *mongo.Database) *WebhookEventStore {
	return &WebhookEventStore{coll: db.Collection(collWebhookEvents)}
}

type webhookEvent struct {
	ID          string    `bson:"_id"`
	ProcessedAt time.Time `bson:"processed_at"`
}

func (s *WebhookEventStore) MarkProcessed(ctx context.Context, eventID string) error {
	doc := webhookEvent{ID: eventID, ProcessedAt: time.Now().UTC()}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return subscription.ErrEventAlreadyProcessed
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}

func (s *WebhookEventStore) Forget(ctx context.Context, eventID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: eventID}}); err != nil {
		return fmt.Errorf("failed to remove webhook event record: %w", err)
	}
	return nil
}
