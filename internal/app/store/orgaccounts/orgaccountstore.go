// internal/app/store/orgaccounts/orgaccountstore.go
package orgaccountstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateAccount = errors.New("this organization already has an account")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("org_accounts")}
}

// Create registers an administrative account for an organization, putting it
// "on platform".
func (s *Store) Create(ctx context.Context, orgID, adminUserID primitive.ObjectID) (models.OrgAccount, error) {
	now := time.Now().UTC()
	acct := models.OrgAccount{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		AdminUserID:    adminUserID,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.c.InsertOne(ctx, acct); err != nil {
		if wafflemongo.IsDup(err) {
			return models.OrgAccount{}, ErrDuplicateAccount
		}
		return models.OrgAccount{}, err
	}
	return acct, nil
}

// GetByOrg returns the account for an organization, or (nil, nil) when the
// org is catalog-only (not on platform).
func (s *Store) GetByOrg(ctx context.Context, orgID primitive.ObjectID) (*models.OrgAccount, error) {
	var acct models.OrgAccount
	err := s.c.FindOne(ctx, bson.M{"organization_id": orgID}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// GetByAdmin returns the account administered by the given user, or
// (nil, nil) if the user administers none.
func (s *Store) GetByAdmin(ctx context.Context, adminUserID primitive.ObjectID) (*models.OrgAccount, error) {
	var acct models.OrgAccount
	err := s.c.FindOne(ctx, bson.M{"admin_user_id": adminUserID}).Decode(&acct)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// SettingsInput carries the application-policy fields an org admin can edit.
type SettingsInput struct {
	AcceptingApplications bool
	ApplicationDeadline   *time.Time
	ApplicationsReopenAt  *time.Time
}

// UpdateSettings replaces the application-policy fields.
func (s *Store) UpdateSettings(ctx context.Context, orgID primitive.ObjectID, in SettingsInput) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"organization_id": orgID}, bson.M{"$set": bson.M{
		"accepting_applications": in.AcceptingApplications,
		"application_deadline":   in.ApplicationDeadline,
		"applications_reopen_at": in.ApplicationsReopenAt,
		"updated_at":             time.Now().UTC(),
	}})
	return err
}

// SetHasCustomForm records whether the org has configured a custom
// application form.
func (s *Store) SetHasCustomForm(ctx context.Context, orgID primitive.ObjectID, has bool) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"organization_id": orgID}, bson.M{"$set": bson.M{
		"has_custom_form": has,
		"updated_at":      time.Now().UTC(),
	}})
	return err
}
