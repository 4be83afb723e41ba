// internal/app/store/usercontext/usercontextstore.go
//
// Fetcher backs the per-user cache hub with fresh reads of a user's joined
// and saved organizations, profile, and latest survey. Every call fetches a
// complete snapshot; the hub replaces its cached sets wholesale.
package usercontextstore

import (
	"context"

	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Fetcher struct {
	joined   *mongo.Collection
	saved    *mongo.Collection
	orgs     *mongo.Collection
	profiles *mongo.Collection
	queries  *mongo.Collection
}

var _ usercache.Fetcher = (*Fetcher)(nil)

func New(db *mongo.Database) *Fetcher {
	return &Fetcher{
		joined:   db.Collection("user_joined_organizations"),
		saved:    db.Collection("saved_organizations"),
		orgs:     db.Collection("organizations"),
		profiles: db.Collection("user_profiles"),
		queries:  db.Collection("user_queries"),
	}
}

func (f *Fetcher) JoinedOrganizations(ctx context.Context, userID primitive.ObjectID) ([]usercache.OrgRef, error) {
	cur, err := f.joined.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetProjection(bson.M{"organization_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var orgIDs []primitive.ObjectID
	for cur.Next(ctx) {
		var row struct {
			OrganizationID primitive.ObjectID `bson:"organization_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		orgIDs = append(orgIDs, row.OrganizationID)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	if len(orgIDs) == 0 {
		return nil, nil
	}

	names, err := f.orgNames(ctx, orgIDs)
	if err != nil {
		return nil, err
	}
	refs := make([]usercache.OrgRef, 0, len(orgIDs))
	for _, id := range orgIDs {
		refs = append(refs, usercache.OrgRef{ID: id, Name: names[id]})
	}
	return refs, nil
}

func (f *Fetcher) SavedOrganizations(ctx context.Context, userID primitive.ObjectID) ([]usercache.SavedRef, error) {
	cur, err := f.saved.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.SavedOrganization
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	refs := make([]usercache.SavedRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, usercache.SavedRef{
			ID:   row.OrganizationID,
			Name: row.OrganizationName,
		})
	}
	return refs, nil
}

func (f *Fetcher) Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error) {
	var p models.UserProfile
	err := f.profiles.FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (f *Fetcher) SurveyQuery(ctx context.Context, userID primitive.ObjectID) (*models.SurveyQuery, error) {
	var q models.SurveyQuery
	err := f.queries.FindOne(ctx, bson.M{"user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "submitted_at", Value: -1}})).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// orgNames resolves organization names for the given IDs. Organizations that
// vanished mid-fetch resolve to an empty name, which the cache ignores when
// matching by name.
func (f *Fetcher) orgNames(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	cur, err := f.orgs.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	names := make(map[primitive.ObjectID]string, len(ids))
	for cur.Next(ctx) {
		var row struct {
			ID   primitive.ObjectID `bson:"_id"`
			Name string             `bson:"name"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		names[row.ID] = row.Name
	}
	return names, cur.Err()
}
