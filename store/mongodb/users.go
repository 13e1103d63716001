package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/subman/user"
)

// UserStore implements user.Store on the users collection. Email
// uniqueness rides on the unique index created by EnsureIndexes.
type UserStore struct {
	coll *mongo.Collection
}

// NewUserStore creates a user store backed by db.
func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(collUsers)}
}

func (s *UserStore) Create(ctx context.Context, u *user.User) error {
	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *UserStore) ListByOrganization(ctx context.Context, organizationID string, onlyActive bool) ([]user.User, error) {
	filter := bson.D{{Key: "organization_id", Value: organizationID}}
	if onlyActive {
		filter = append(filter, bson.E{Key: "is_active", Value: true})
	}

	cursor, err := s.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	var users []user.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) CountActiveByRole(ctx context.Context, organizationID string, role user.Role) (int64, error) {
	filter := bson.D{
		{Key: "organization_id", Value: organizationID},
		{Key: "is_active", Value: true},
	}
	if role != "" {
		filter = append(filter, bson.E{Key: "role", Value: role})
	}

	count, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (s *UserStore) Update(ctx context.Context, u *user.User) error {
	res, err := s.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *UserStore) SetActive(ctx context.Context, id string, active bool) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_active", Value: active},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *UserStore) SetActiveByOrganization(ctx context.Context, organizationID string, active bool) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_active", Value: active},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	if _, err := s.coll.UpdateMany(ctx, bson.D{{Key: "organization_id", Value: organizationID}}, update); err != nil {
		return fmt.Errorf("failed to set organization users active flag: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (s *UserStore) DeleteByOrganization(ctx context.Context, organizationID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{{Key: "organization_id", Value: organizationID}}); err != nil {
		return fmt.Errorf("failed to delete organization users: %w", err)
	}
	return nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.D) (*user.User, error) {
	var u user.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &u, nil
}
