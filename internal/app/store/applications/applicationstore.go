// internal/app/store/applications/applicationstore.go
package applicationstore

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

var ErrDuplicateApplication = errors.New("user already has a pending application for this organization")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("application_drafts")}
}

// Input carries everything needed to record an application. The full set of
// responses is written in a single insert so a reader never observes a
// partially-assembled application.
type Input struct {
	UserID         primitive.ObjectID
	OrganizationID primitive.ObjectID
	ApplicantName  string
	ApplicantEmail string
	Justification  string
	Responses      []models.QuestionResponse
}

// Create inserts a pending application atomically. One pending application per
// (user, organization) pair; duplicates return ErrDuplicateApplication.
func (s *Store) Create(ctx context.Context, in Input) (models.Application, error) {
	app := models.Application{
		ID:             primitive.NewObjectID(),
		UserID:         in.UserID,
		OrganizationID: in.OrganizationID,
		ApplicantName:  in.ApplicantName,
		ApplicantEmail: in.ApplicantEmail,
		Justification:  in.Justification,
		Responses:      in.Responses,
		Status:         models.ApplicationPending,
		SubmittedAt:    time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, app); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Application{}, ErrDuplicateApplication
		}
		return models.Application{}, err
	}
	return app, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error) {
	var app models.Application
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListByOrg returns the pending applications for an organization, oldest
// first, so admins review in submission order.
func (s *Store) ListByOrg(ctx context.Context, orgID primitive.ObjectID) ([]models.Application, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submitted_at", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{
		"organization_id": orgID,
		"status":          models.ApplicationPending,
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var apps []models.Application
	if err := cur.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// ExistsPending reports whether the user already has a pending application
// with the organization.
func (s *Store) ExistsPending(ctx context.Context, userID, orgID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"user_id":         userID,
		"organization_id": orgID,
		"status":          models.ApplicationPending,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes an application document, typically after approval converts
// it into a membership.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
