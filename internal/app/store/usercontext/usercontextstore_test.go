package usercontextstore_test

import (
	"testing"
	"time"

	usercontextstore "github.com/dalemusser/campushub/internal/app/store/usercontext"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFetcher_JoinedOrganizationsResolvesNames(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	f := usercontextstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	robotics := fx.CreateOrganization(ctx, "Robotics Club")
	chess := fx.CreateOrganization(ctx, "Chess Club")
	fx.CreateMembership(ctx, user.ID, robotics.ID)
	fx.CreateMembership(ctx, user.ID, chess.ID)

	refs, err := f.JoinedOrganizations(ctx, user.ID)
	if err != nil {
		t.Fatalf("JoinedOrganizations: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	names := map[string]bool{}
	for _, ref := range refs {
		names[ref.Name] = true
	}
	if !names["Robotics Club"] || !names["Chess Club"] {
		t.Errorf("names not resolved: %v", names)
	}
}

func TestFetcher_JoinedOrganizationsEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	f := usercontextstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	refs, err := f.JoinedOrganizations(ctx, user.ID)
	if err != nil {
		t.Fatalf("JoinedOrganizations: %v", err)
	}
	if len(refs) != 0 {
		t.Errorf("expected empty refs, got %v", refs)
	}
}

func TestFetcher_SavedOrganizations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	f := usercontextstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Robotics Club")
	fx.CreateSavedOrg(ctx, user.ID, &org.ID, "Robotics Club")
	fx.CreateSavedOrg(ctx, user.ID, nil, "Future Entrepreneurs")

	refs, err := f.SavedOrganizations(ctx, user.ID)
	if err != nil {
		t.Fatalf("SavedOrganizations: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}

	var linked, unlinked int
	for _, ref := range refs {
		if ref.ID != nil {
			linked++
		} else {
			unlinked++
		}
	}
	if linked != 1 || unlinked != 1 {
		t.Errorf("expected one linked and one unlinked ref, got %d/%d", linked, unlinked)
	}
}

func TestFetcher_ProfileAndSurveyAbsent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	f := usercontextstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")

	p, err := f.Profile(ctx, user.ID)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil profile, got %+v", p)
	}

	q, err := f.SurveyQuery(ctx, user.ID)
	if err != nil {
		t.Fatalf("SurveyQuery: %v", err)
	}
	if q != nil {
		t.Errorf("expected nil survey, got %+v", q)
	}
}

func TestFetcher_SurveyQueryReturnsLatest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	f := usercontextstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	first := fx.CreateSurvey(ctx, user.ID, "first interests")

	// Backdate the first submission, then add a newer one.
	if _, err := db.Collection("user_queries").UpdateByID(ctx, first.ID, bson.M{
		"$set": bson.M{"submitted_at": first.SubmittedAt.Add(-time.Hour)},
	}); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	fx.CreateSurvey(ctx, user.ID, "newer interests")

	q, err := f.SurveyQuery(ctx, user.ID)
	if err != nil {
		t.Fatalf("SurveyQuery: %v", err)
	}
	if q == nil || q.Query != "newer interests" {
		t.Errorf("expected latest survey, got %+v", q)
	}
}
