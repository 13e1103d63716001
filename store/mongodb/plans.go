package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/subman/plan"
)

// PlanStore implements plan.Store on the plans collection.
type PlanStore struct {
	coll *mongo.Collection
}

// NewPlanStore creates a plan store backed by db.
func NewPlanStore(db *mongo.Database) *PlanStore {
	return &PlanStore{coll: db.Collection(collPlans)}
}

func (s *PlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}
	return nil
}

func (s *PlanStore) GetByID(ctx context.Context, id string) (*plan.Plan, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *PlanStore) GetByName(ctx context.Context, name plan.Name) (*plan.Plan, error) {
	return s.findOne(ctx, bson.D{{Key: "name", Value: name}, {Key: "is_active", Value: true}})
}

func (s *PlanStore) GetByStripePriceID(ctx context.Context, priceID string) (*plan.Plan, error) {
	return s.findOne(ctx, bson.D{{Key: "stripe_price_id", Value: priceID}})
}

func (s *PlanStore) List(ctx context.Context, onlyActive bool) ([]plan.Plan, error) {
	filter := bson.D{}
	if onlyActive {
		filter = bson.D{{Key: "is_active", Value: true}}
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	var plans []plan.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}
	return plans, nil
}

func (s *PlanStore) Update(ctx context.Context, p *plan.Plan) error {
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: p.ID}}, p)
	if err != nil {
		return fmt.Errorf("failed to update plan: %w", err)
	}
	if res.MatchedCount == 0 {
		return plan.ErrNotFound
	}
	return nil
}

func (s *PlanStore) findOne(ctx context.Context, filter bson.D) (*plan.Plan, error) {
	var p plan.Plan
	if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, plan.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find plan: %w", err)
	}
	return &p, nil
}
