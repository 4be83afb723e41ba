// internal/app/store/joinedorgs/joinedorgstore.go
package joinedorgstore

import (
	"context"
	"errors"
	"time"

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
	ErrDuplicateMembership = errors.New("user is already a member of this organization")
	errBadRole             = errors.New(`role must be "member", "officer", or "admin"`)
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_joined_organizations")}
}

// Add creates a membership. The (user, organization) pair is unique; a
// duplicate insert returns ErrDuplicateMembership.
func (s *Store) Add(ctx context.Context, userID, orgID primitive.ObjectID, role, title string) (models.JoinedOrganization, error) {
	switch role {
	case models.MembershipRoleMember, models.MembershipRoleOfficer, models.MembershipRoleAdmin:
	default:
		return models.JoinedOrganization{}, errBadRole
	}

	m := models.JoinedOrganization{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		OrganizationID: orgID,
		Role:           role,
		Title:          title,
		JoinedAt:       time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinedOrganization{}, ErrDuplicateMembership
		}
		return models.JoinedOrganization{}, err
	}
	return m, nil
}

// ListByUser returns the user's memberships, newest first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.JoinedOrganization, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joined_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	defer cur.Close(ctx)
	var memberships []models.JoinedOrganization
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListUserIDsByOrg returns the IDs of all members of an organization.
func (s *Store) ListUserIDsByOrg(ctx context.Context, orgID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID},
		options.Find().SetProjection(bson.M{"user_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			UserID primitive.ObjectID `bson:"user_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.UserID)
	}
	return ids, cur.Err()
}

// Exists checks if a membership exists for the given user and organization.
func (s *Store) Exists(ctx context.Context, userID, orgID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "organization_id": orgID}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes the membership for (userID, orgID). Returns the number of
// documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, userID, orgID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "organization_id": orgID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CountByOrg returns the membership count for an organization.
func (s *Store) CountByOrg(ctx context.Context, orgID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"organization_id": orgID})
}
