// internal/app/store/caltokens/caltokenstore.go
package caltokenstore

import (
	"context"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/oauth2"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("google_calendar_tokens")}
}

func (s *Store) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.CalendarToken, error) {
	var tok models.CalendarToken
	err := s.c.FindOne(ctx, bson.M{"user_id": userID}).Decode(&tok)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Upsert stores the OAuth token for a user, replacing any previous grant.
func (s *Store) Upsert(ctx context.Context, userID primitive.ObjectID, tok *oauth2.Token) (models.CalendarToken, error) {
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"access_token":  tok.AccessToken,
			"refresh_token": tok.RefreshToken,
			"token_type":    tok.TokenType,
			"expiry":        tok.Expiry.UTC(),
			"updated_at":    now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"user_id":    userID,
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var stored models.CalendarToken
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&stored); err != nil {
		return models.CalendarToken{}, err
	}
	return stored, nil
}

// UpdateToken persists a token that the OAuth client refreshed, keeping the
// stored refresh token when Google omits it from the response.
func (s *Store) UpdateToken(ctx context.Context, userID primitive.ObjectID, tok *oauth2.Token) error {
	set := bson.M{
		"access_token": tok.AccessToken,
		"token_type":   tok.TokenType,
		"expiry":       tok.Expiry.UTC(),
		"updated_at":   time.Now().UTC(),
	}
	if tok.RefreshToken != "" {
		set["refresh_token"] = tok.RefreshToken
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"user_id": userID}, bson.M{"$set": set})
	return err
}

// All returns every stored grant, for the periodic sync sweep.
func (s *Store) All(ctx context.Context) ([]models.CalendarToken, error) {
	cur, err := s.c.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var toks []models.CalendarToken
	if err := cur.All(ctx, &toks); err != nil {
		return nil, err
	}
	return toks, nil
}

// Delete removes a user's calendar grant.
func (s *Store) Delete(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
