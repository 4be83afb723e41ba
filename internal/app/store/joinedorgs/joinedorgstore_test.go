package joinedorgstore_test

import (
	"context"
	"testing"

	joinedorgstore "github.com/dalemusser/campushub/internal/app/store/joinedorgs"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func createMembershipIndex(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("user_joined_organizations").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "organization_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func TestStore_Add(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := joinedorgstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Robotics Club")

	m, err := store.Add(ctx, user.ID, org.ID, models.MembershipRoleMember, "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if m.JoinedAt.IsZero() {
		t.Error("expected JoinedAt to be set")
	}

	exists, err := store.Exists(ctx, user.ID, org.ID)
	if err != nil || !exists {
		t.Errorf("membership should exist: exists=%v err=%v", exists, err)
	}
}

func TestStore_Add_RejectsBadRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := joinedorgstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Robotics Club")

	if _, err := store.Add(ctx, user.ID, org.ID, "president", ""); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestStore_Add_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := joinedorgstore.New(db)

	if err := createMembershipIndex(ctx, db); err != nil {
		t.Fatalf("create index: %v", err)
	}

	user := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Robotics Club")

	if _, err := store.Add(ctx, user.ID, org.ID, models.MembershipRoleMember, ""); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if _, err := store.Add(ctx, user.ID, org.ID, models.MembershipRoleMember, ""); err != joinedorgstore.ErrDuplicateMembership {
		t.Errorf("expected ErrDuplicateMembership, got %v", err)
	}
}

func TestStore_Remove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := joinedorgstore.New(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Robotics Club")
	fx.CreateMembership(ctx, user.ID, org.ID)

	n, err := store.Remove(ctx, user.ID, org.ID)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deletion, got %d", n)
	}

	exists, err := store.Exists(ctx, user.ID, org.ID)
	if err != nil || exists {
		t.Errorf("membership should be gone: exists=%v err=%v", exists, err)
	}
}

func TestStore_ListUserIDsByOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := joinedorgstore.New(db)

	org := fx.CreateOrganization(ctx, "Robotics Club")
	alice := fx.CreateStudent(ctx, "alice@test.edu")
	bob := fx.CreateStudent(ctx, "bob@test.edu")
	fx.CreateMembership(ctx, alice.ID, org.ID)
	fx.CreateMembership(ctx, bob.ID, org.ID)

	ids, err := store.ListUserIDsByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("ListUserIDsByOrg: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 members, got %d", len(ids))
	}
}
