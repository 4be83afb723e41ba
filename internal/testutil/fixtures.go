package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given email and role.
func (f *Fixtures) CreateUser(ctx context.Context, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:            primitive.NewObjectID(),
		Email:         email,
		EmailCI:       normalize.Email(email),
		PasswordHash:  "$2a$10$testhashtesthashtesthashtesthashtesthashtesthashtest",
		Role:          role,
		EmailVerified: true,
		Status:        "active",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateStudent creates a test user with the student role.
func (f *Fixtures) CreateStudent(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, email, "student")
}

// CreateOrgAdmin creates a test user with the orgadmin role.
func (f *Fixtures) CreateOrgAdmin(ctx context.Context, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, email, "orgadmin")
}

// CreateOrganization creates a catalog organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	now := time.Now().UTC()
	org := models.Organization{
		ID:               primitive.NewObjectID(),
		Name:             name,
		NameCI:           normalize.OrgName(name),
		Bio:              "Test organization bio",
		MeetingSchedule:  "Tuesdays 6pm",
		MeetingLocation:  "Memorial Union",
		MemberCountEst:   25,
		TypicalMajors:    "Computer Science",
		IsApplicationReq: false,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := f.db.Collection("organizations").InsertOne(ctx, org); err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateApplicationOrg creates an organization that requires an application.
func (f *Fixtures) CreateApplicationOrg(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	org := f.CreateOrganization(ctx, name)
	_, err := f.db.Collection("organizations").UpdateByID(ctx, org.ID,
		bson.M{"$set": bson.M{"is_application_based": true}})
	if err != nil {
		f.t.Fatalf("failed to mark organization application-based: %v", err)
	}
	org.IsApplicationReq = true
	return org
}

// CreateOrgAccount registers an organization on the platform with the given
// admin and application settings.
func (f *Fixtures) CreateOrgAccount(ctx context.Context, orgID, adminID primitive.ObjectID, accepting bool) models.OrgAccount {
	f.t.Helper()

	now := time.Now().UTC()
	acct := models.OrgAccount{
		ID:                    primitive.NewObjectID(),
		OrganizationID:        orgID,
		AdminUserID:           adminID,
		Active:                true,
		AcceptingApplications: accepting,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if _, err := f.db.Collection("org_accounts").InsertOne(ctx, acct); err != nil {
		f.t.Fatalf("failed to create test org account: %v", err)
	}
	return acct
}

// CreateMembership records a joined organization for the user.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, orgID primitive.ObjectID) models.JoinedOrganization {
	f.t.Helper()

	m := models.JoinedOrganization{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		OrganizationID: orgID,
		Role:           models.MembershipRoleMember,
		JoinedAt:       time.Now().UTC(),
	}

	if _, err := f.db.Collection("user_joined_organizations").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateSavedOrg records a saved organization, linked when orgID is non-nil.
func (f *Fixtures) CreateSavedOrg(ctx context.Context, userID primitive.ObjectID, orgID *primitive.ObjectID, name string) models.SavedOrganization {
	f.t.Helper()

	saved := models.SavedOrganization{
		ID:                 primitive.NewObjectID(),
		UserID:             userID,
		OrganizationID:     orgID,
		OrganizationName:   name,
		OrganizationNameCI: normalize.OrgName(name),
		CreatedAt:          time.Now().UTC(),
	}

	if _, err := f.db.Collection("saved_organizations").InsertOne(ctx, saved); err != nil {
		f.t.Fatalf("failed to create test saved organization: %v", err)
	}
	return saved
}

// CreateSurvey records a survey submission for the user.
func (f *Fixtures) CreateSurvey(ctx context.Context, userID primitive.ObjectID, query string) models.SurveyQuery {
	f.t.Helper()

	sq := models.SurveyQuery{
		ID:     primitive.NewObjectID(),
		UserID: userID,
		Query:  query,
		Demographics: models.Demographics{
			Major:          "Computer Science",
			Classification: "sophomore",
		},
		SubmittedAt: time.Now().UTC(),
	}

	if _, err := f.db.Collection("user_queries").InsertOne(ctx, sq); err != nil {
		f.t.Fatalf("failed to create test survey: %v", err)
	}
	return sq
}

// CreateForm installs an application form with one required short-text
// question and returns the form with its question.
func (f *Fixtures) CreateForm(ctx context.Context, orgID primitive.ObjectID, prompt string) (models.OrgForm, models.FormQuestion) {
	f.t.Helper()

	now := time.Now().UTC()
	form := models.OrgForm{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Title:          "Membership Application",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	q := models.FormQuestion{
		ID:       primitive.NewObjectID(),
		FormID:   form.ID,
		Position: 0,
		Prompt:   prompt,
		Type:     models.QuestionShortText,
		Required: true,
	}

	if _, err := f.db.Collection("org_forms").InsertOne(ctx, form); err != nil {
		f.t.Fatalf("failed to create test form: %v", err)
	}
	if _, err := f.db.Collection("form_questions").InsertOne(ctx, q); err != nil {
		f.t.Fatalf("failed to create test form question: %v", err)
	}
	_, err := f.db.Collection("org_accounts").UpdateOne(ctx,
		bson.M{"organization_id": orgID},
		bson.M{"$set": bson.M{"has_custom_form": true}})
	if err != nil {
		f.t.Fatalf("failed to flag custom form on org account: %v", err)
	}
	return form, q
}
