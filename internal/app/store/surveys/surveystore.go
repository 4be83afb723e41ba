// internal/app/store/surveys/surveystore.go
package surveystore

import (
	"context"
	"strings"
	"time"

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
	return &Store{c: db.Collection("user_queries")}
}

// Latest returns the user's survey query, or (nil, nil) when the user has
// not taken the survey. There is at most one row per user: submissions are
// latest-wins, no history is kept.
func (s *Store) Latest(ctx context.Context, userID primitive.ObjectID) (*models.SurveyQuery, error) {
	var q models.SurveyQuery
	opts := options.FindOne().SetSort(bson.D{{Key: "submitted_at", Value: -1}})
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// Upsert replaces the user's survey query with a new submission.
func (s *Store) Upsert(ctx context.Context, userID primitive.ObjectID, query string, demo models.Demographics) (models.SurveyQuery, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"query":        strings.TrimSpace(query),
			"demographics": demo,
			"submitted_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":     primitive.NewObjectID(),
			"user_id": userID,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var q models.SurveyQuery
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&q); err != nil {
		return models.SurveyQuery{}, err
	}
	return q, nil
}
