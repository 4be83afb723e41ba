// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"time"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_profiles")}
}

// GetByUser returns the user's profile row, or (nil, nil) when the user has
// not saved a profile yet. Profiles are created lazily on first save.
func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertInput carries the profile fields a user can edit.
type UpsertInput struct {
	DisplayName          string
	EmailMarketing       bool
	EmailUpdates         bool
	EmailRecommendations bool
}

// Upsert creates the profile row on first save and replaces the editable
// fields afterwards.
func (s *Store) Upsert(ctx context.Context, userID primitive.ObjectID, in UpsertInput) (models.UserProfile, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"display_name":          normalize.Name(in.DisplayName),
			"email_marketing":       in.EmailMarketing,
			"email_updates":         in.EmailUpdates,
			"email_recommendations": in.EmailRecommendations,
			"updated_at":            now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"user_id":    userID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var p models.UserProfile
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&p); err != nil {
		return models.UserProfile{}, err
	}
	return p, nil
}

// SetPicturePath records the storage path of the uploaded profile picture,
// creating the profile row if this is the user's first save.
func (s *Store) SetPicturePath(ctx context.Context, userID primitive.ObjectID, path string) error {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"picture_path": path,
			"updated_at":   now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"user_id":    userID,
			"created_at": now,
		},
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	return err
}
