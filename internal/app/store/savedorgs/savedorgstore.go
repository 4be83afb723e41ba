// internal/app/store/savedorgs/savedorgstore.go
package savedorgstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	ErrDuplicateSave = errors.New("organization is already saved")
	errMissingName   = errors.New("saved organization requires a name")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("saved_organizations")}
}

// SaveInput describes a bookmark. OrganizationID is nil for unlinked saves
// (orgs not in the catalog yet); Name is required either way so unlinked
// saves can be matched by normalized name later.
type SaveInput struct {
	OrganizationID      *primitive.ObjectID
	Name                string
	NotifyWhenAvailable bool
	AutoJoined          bool
}

// Save creates a bookmark for the user.
func (s *Store) Save(ctx context.Context, userID primitive.ObjectID, in SaveInput) (models.SavedOrganization, error) {
	name := normalize.Name(in.Name)
	if name == "" {
		return models.SavedOrganization{}, errMissingName
	}
	rec := models.SavedOrganization{
		ID:                  primitive.NewObjectID(),
		UserID:              userID,
		OrganizationID:      in.OrganizationID,
		OrganizationName:    name,
		OrganizationNameCI:  normalize.OrgName(name),
		NotifyWhenAvailable: in.NotifyWhenAvailable,
		AutoJoined:          in.AutoJoined,
		CreatedAt:           time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, rec); err != nil {
		if wafflemongo.IsDup(err) {
			return models.SavedOrganization{}, ErrDuplicateSave
		}
		return models.SavedOrganization{}, err
	}
	return rec, nil
}

// ListByUser returns all of the user's saves, newest first. No rows is a
// valid empty state.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.SavedOrganization, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	defer cur.Close(ctx)
	var saves []models.SavedOrganization
	if err := cur.All(ctx, &saves); err != nil {
		return nil, err
	}
	return saves, nil
}

// Delete removes one of the user's saves by record ID. Returns the number of
// documents deleted (0 or 1).
func (s *Store) Delete(ctx context.Context, userID, savedID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": savedID, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByOrg removes the user's save for a specific organization, matching
// linked saves by ID and unlinked saves by normalized name. Joining an
// organization calls this so save and membership stay mutually exclusive.
func (s *Store) DeleteByOrg(ctx context.Context, userID, orgID primitive.ObjectID, orgName string) (int64, error) {
	filter := bson.M{
		"user_id": userID,
		"$or": bson.A{
			bson.M{"organization_id": orgID},
			bson.M{"organization_name_ci": normalize.OrgName(orgName)},
		},
	}
	res, err := s.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ExistsForOrg reports whether the user already has a save for the
// organization (linked by ID or unlinked by normalized name).
func (s *Store) ExistsForOrg(ctx context.Context, userID, orgID primitive.ObjectID, orgName string) (bool, error) {
	filter := bson.M{
		"user_id": userID,
		"$or": bson.A{
			bson.M{"organization_id": orgID},
			bson.M{"organization_name_ci": normalize.OrgName(orgName)},
		},
	}
	err := s.c.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListNotifiableByName returns saves with notify_when_available set whose
// normalized name matches, used when a cataloged org comes on platform.
func (s *Store) ListNotifiableByName(ctx context.Context, orgName string) ([]models.SavedOrganization, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"organization_name_ci":  normalize.OrgName(orgName),
		"notify_when_available": true,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var saves []models.SavedOrganization
	if err := cur.All(ctx, &saves); err != nil {
		return nil, err
	}
	return saves, nil
}
