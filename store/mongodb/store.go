// Package mongodb implements the persistence interfaces on MongoDB.
// Each store wraps one collection; driver errors are mapped to the
// domain sentinel errors at this boundary.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	collPlans         = "plans"
	collOrganizations = "organizations"
	collUsers         = "users"
	collWebhookEvents = "webhook_events"
)

// EnsureIndexes creates the indexes the stores rely on. Safe to call on
// every startup; existing indexes are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "organization_id", Value: 1}, {Key: "is_active", Value: 1}},
		},
	}
	if _, err := db.Collection(collUsers).Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	orgIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "stripe_subscription_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "stripe_subscription_id", Value: bson.D{{Key: "$type", Value: "string"}}}}),
		},
	}
	if _, err := db.Collection(collOrganizations).Indexes().CreateMany(ctx, orgIndexes); err != nil {
		return fmt.Errorf("failed to create organization indexes: %w", err)
	}

	planIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
		{Keys: bson.D{{Key: "stripe_price_id", Value: 1}}},
	}
	if _, err := db.Collection(collPlans).Indexes().CreateMany(ctx, planIndexes); err != nil {
		return fmt.Errorf("failed to create plan indexes: %w", err)
	}

	return nil
}
