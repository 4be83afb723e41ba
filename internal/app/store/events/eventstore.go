// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
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

var errEndsBeforeStart = errors.New("event end time must not precede its start time")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_events")}
}

type Input struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
}

func (s *Store) Create(ctx context.Context, orgID primitive.ObjectID, in Input) (models.OrgEvent, error) {
	if in.EndsAt.Before(in.StartsAt) {
		return models.OrgEvent{}, errEndsBeforeStart
	}
	now := time.Now().UTC()
	ev := models.OrgEvent{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Title:          in.Title,
		Description:    in.Description,
		Location:       in.Location,
		StartsAt:       in.StartsAt.UTC(),
		EndsAt:         in.EndsAt.UTC(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, ev); err != nil {
		return models.OrgEvent{}, err
	}
	return ev, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OrgEvent, error) {
	var ev models.OrgEvent
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// ListByOrg returns the organization's events ordered by start time.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.OrgEvent, error) {
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []models.OrgEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListUpcomingByOrgs returns future events for any of the given
// organizations, soonest first, for member calendar sync.
func (s *Store) ListUpcomingByOrgs(ctx context.Context, orgIDs []primitive.ObjectID, after time.Time) ([]models.OrgEvent, error) {
	if len(orgIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "starts_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"organization_id": bson.M{"$in": orgIDs},
		"starts_at":       bson.M{"$gte": after.UTC()},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var events []models.OrgEvent
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *Store) Update(ctx context.Context, id primitive.ObjectID, in Input) (int64, error) {
	if in.EndsAt.Before(in.StartsAt) {
		return 0, errEndsBeforeStart
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       in.Title,
		"description": in.Description,
		"location":    in.Location,
		"starts_at":   in.StartsAt.UTC(),
		"ends_at":     in.EndsAt.UTC(),
		"updated_at":  time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetGoogleEventID records the Google Calendar event created for a user so a
// later sync can recognize events that are already mirrored.
func (s *Store) SetGoogleEventID(ctx context.Context, eventID, userID primitive.ObjectID, googleEventID string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": eventID}, bson.M{"$set": bson.M{
		"google_event_ids." + userID.Hex(): googleEventID,
		"updated_at":                       time.Now().UTC(),
	}})
	return err
}
