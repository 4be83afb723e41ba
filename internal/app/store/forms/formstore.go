// internal/app/store/forms/formstore.go
package formstore

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
	forms     *mongo.Collection
	questions *mongo.Collection
}

var errNoQuestions = errors.New("a form must contain at least one question")

func New(db *mongo.Database) *Store {
	return &Store{
		forms:     db.Collection("org_forms"),
		questions: db.Collection("form_questions"),
	}
}

// QuestionInput describes one question when replacing a form. Position is
// assigned from slice order.
type QuestionInput struct {
	Prompt    string   `json:"prompt"`
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	WordLimit int      `json:"word_limit,omitempty"`
	Options   []string `json:"options,omitempty"`
}

// GetByOrg returns the organization's form and its questions in display
// order, or (nil, nil, nil) when no form is configured.
func (s *Store) GetByOrg(ctx context.Context, orgID primitive.ObjectID) (*models.OrgForm, []models.FormQuestion, error) {
	var form models.OrgForm
	err := s.forms.FindOne(ctx, bson.M{"organization_id": orgID},
		options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})).Decode(&form)
	if err == mongo.ErrNoDocuments {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cur, err := s.questions.Find(ctx, bson.M{"form_id": form.ID}, opts)
	if err != nil {
		return nil, nil, err
	}
	defer cur.Close(ctx)
	var questions []models.FormQuestion
	if err := cur.All(ctx, &questions); err != nil {
		return nil, nil, err
	}
	return &form, questions, nil
}

// Replace installs a new form for the organization, discarding any previous
// form and its questions. Applicants who fetch the form mid-replace see
// either the old or the new question set in full; positions come from the
// order of the input slice.
func (s *Store) Replace(ctx context.Context, orgID primitive.ObjectID, title string, questions []QuestionInput) (*models.OrgForm, error) {
	if len(questions) == 0 {
		return nil, errNoQuestions
	}

	now := time.Now().UTC()
	form := models.OrgForm{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Title:          title,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	docs := make([]interface{}, 0, len(questions))
	for i, q := range questions {
		docs = append(docs, models.FormQuestion{
			ID:        primitive.NewObjectID(),
			FormID:    form.ID,
			Position:  i,
			Prompt:    q.Prompt,
			Type:      q.Type,
			Required:  q.Required,
			WordLimit: q.WordLimit,
			Options:   q.Options,
		})
	}

	// Insert the new question set first so applicants always see a complete
	// form, then swap the form document and drop the old questions.
	if _, err := s.questions.InsertMany(ctx, docs); err != nil {
		return nil, err
	}
	if _, err := s.forms.InsertOne(ctx, form); err != nil {
		return nil, err
	}

	var previous models.OrgForm
	err := s.forms.FindOneAndDelete(ctx, bson.M{
		"organization_id": orgID,
		"_id":             bson.M{"$ne": form.ID},
	}).Decode(&previous)
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, err
	}
	if err == nil {
		if _, err := s.questions.DeleteMany(ctx, bson.M{"form_id": previous.ID}); err != nil {
			return nil, err
		}
	}
	return &form, nil
}

// DeleteByOrg removes the organization's form and questions, if any.
func (s *Store) DeleteByOrg(ctx context.Context, orgID primitive.ObjectID) error {
	var form models.OrgForm
	err := s.forms.FindOneAndDelete(ctx, bson.M{"organization_id": orgID}).Decode(&form)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = s.questions.DeleteMany(ctx, bson.M{"form_id": form.ID})
	return err
}
