// internal/app/store/organizations/organizationstore.go
package organizationstore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/app/system/paging"
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

var ErrDuplicateOrganization = errors.New("an organization with this name already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("organizations")}
}

func (s *Store) Create(ctx context.Context, org models.Organization) (models.Organization, error) {
	now := time.Now().UTC()
	org.ID = primitive.NewObjectID()
	org.Name = normalize.Name(org.Name)
	org.NameCI = normalize.OrgName(org.Name)
	org.CreatedAt = now
	org.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, org); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Organization{}, ErrDuplicateOrganization
		}
		return models.Organization{}, err
	}
	return org, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Organization, error) {
	var org models.Organization
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return models.Organization{}, err
	}
	return org, nil
}

// GetByIDs loads multiple organizations by their ObjectIDs.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// GetByName looks up an organization by normalized name. Returns (nil, nil)
// when no catalog row matches; unlinked saves depend on this distinction.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	var org models.Organization
	err := s.c.FindOne(ctx, bson.M{"name_ci": normalize.OrgName(name)}).Decode(&org)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// List returns one page of the catalog ordered by folded name. Search, when
// non-empty, matches a case-insensitive substring of the name.
func (s *Store) List(ctx context.Context, search string, page, pageSize int) ([]models.Organization, error) {
	filter := bson.M{}
	if q := normalize.OrgName(search); q != "" {
		filter["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(q)}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}}).
		SetSkip(paging.Offset(page, pageSize)).
		SetLimit(int64(pageSize))

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var orgs []models.Organization
	if err := cur.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Count returns the catalog size for the same filter List applies.
func (s *Store) Count(ctx context.Context, search string) (int64, error) {
	filter := bson.M{}
	if q := normalize.OrgName(search); q != "" {
		filter["name_ci"] = bson.M{"$regex": regexp.QuoteMeta(q)}
	}
	return s.c.CountDocuments(ctx, filter)
}

// All streams the entire catalog in fixed-size offset windows, ordered by
// folded name, so a single read never exceeds the store's row cap.
func (s *Store) All(ctx context.Context) ([]models.Organization, error) {
	var all []models.Organization
	for skip := int64(0); ; skip += paging.WindowSize {
		opts := options.Find().
			SetSort(bson.D{{Key: "name_ci", Value: 1}}).
			SetSkip(skip).
			SetLimit(paging.WindowSize)
		cur, err := s.c.Find(ctx, bson.M{}, opts)
		if err != nil {
			return nil, err
		}
		var window []models.Organization
		err = cur.All(ctx, &window)
		cur.Close(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, window...)
		if len(window) < paging.WindowSize {
			return all, nil
		}
	}
}

// Update modifies an organization's mutable catalog fields and refreshes
// UpdatedAt.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, org models.Organization) error {
	set := bson.M{
		"updated_at": time.Now().UTC(),
	}
	if org.Name != "" {
		set["name"] = normalize.Name(org.Name)
		set["name_ci"] = normalize.OrgName(org.Name)
	}
	if org.Bio != "" {
		set["bio"] = org.Bio
	}
	if org.Website != "" {
		set["website"] = org.Website
	}
	if org.MeetingSchedule != "" {
		set["meeting_schedule"] = org.MeetingSchedule
	}
	if org.MeetingLocation != "" {
		set["meeting_location"] = org.MeetingLocation
	}
	if org.Dues != "" {
		set["dues"] = org.Dues
	}
	if org.AppRequirements != "" {
		set["app_requirements"] = org.AppRequirements
	}
	if org.MemberCountEst > 0 {
		set["member_count_est"] = org.MemberCountEst
	}
	set["is_application_based"] = org.IsApplicationReq

	if _, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set}); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateOrganization
		}
		return err
	}
	return nil
}
