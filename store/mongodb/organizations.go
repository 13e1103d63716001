package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/subman/organization"
)

// OrganizationStore implements organization.Store on the organizations
// collection.
type OrganizationStore struct {
	coll *mongo.Collection
}

// NewOrganizationStore creates an organization store backed by db.
func NewOrganizationStore(db *mongo.Database) *OrganizationStore {
	return &OrganizationStore{coll: db.Collection(collOrganizations)}
}

func (s *OrganizationStore) Create(ctx context.Context, org *organization.Organization) error {
	if _, err := s.coll.InsertOne(ctx, org); err != nil {
		return fmt.Errorf("failed to insert organization: %w", err)
	}
	return nil
}

func (s *OrganizationStore) GetByID(ctx context.Context, id string) (*organization.Organization, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *OrganizationStore) GetByStripeSubscriptionID(ctx context.Context, subscriptionID string) (*organization.Organization, error) {
	return s.findOne(ctx, bson.D{{Key: "stripe_subscription_id", Value: subscriptionID}})
}

func (s *OrganizationStore) List(ctx context.Context) ([]organization.Organization, error) {
	cursor, err := s.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}

	var orgs []organization.Organization
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, fmt.Errorf("failed to decode organizations: %w", err)
	}
	return orgs, nil
}

func (s *OrganizationStore) Update(ctx context.Context, org *organization.Organization) error {
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: org.ID}}, org)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if res.MatchedCount == 0 {
		return organization.ErrNotFound
	}
	return nil
}

func (s *OrganizationStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	if res.DeletedCount == 0 {
		return organization.ErrNotFound
	}
	return nil
}

// AcquireSeat increments the advisory counter only while it is below
// max. The filter and increment run as one document update, so two
// concurrent admissions at max-1 cannot both succeed.
func (s *OrganizationStore) AcquireSeat(ctx context.Context, id string, max int64) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "active_users", Value: bson.D{{Key: "$lt", Value: max}}},
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "active_users", Value: 1}}}}

	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to acquire seat: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the organization is missing or the counter is at the
		// ceiling; distinguish so callers can report correctly.
		if _, gerr := s.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return organization.ErrSeatLimitReached
	}
	return nil
}

// ReleaseSeat decrements the advisory counter, never below zero.
func (s *OrganizationStore) ReleaseSeat(ctx context.Context, id string) error {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "active_users", Value: bson.D{{Key: "$gt", Value: 0}}},
	}
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: "active_users", Value: -1}}}}

	if _, err := s.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	return nil
}

func (s *OrganizationStore) findOne(ctx context.Context, filter bson.D) (*organization.Organization, error) {
	var org organization.Organization
	if err := s.coll.FindOne(ctx, filter).Decode(&org); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, organization.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return &org, nil
}
