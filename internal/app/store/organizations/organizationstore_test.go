package organizationstore_test

import (
	"fmt"
	"testing"

	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
)

func TestStore_Create_SetsFoldedName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := organizationstore.New(db)

	org, err := store.Create(ctx, models.Organization{
		Name: "  Robotics   Club ",
		Bio:  "We build robots.",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if org.NameCI != "robotics club" {
		t.Errorf("expected folded name 'robotics club', got %q", org.NameCI)
	}
}

func TestStore_GetByName_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := organizationstore.New(db)

	created := fx.CreateOrganization(ctx, "Robotics Club")

	got, err := store.GetByName(ctx, "ROBOTICS  club")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("expected organization %s, got %+v", created.ID.Hex(), got)
	}

	missing, err := store.GetByName(ctx, "Nonexistent Society")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown name, got %+v", missing)
	}
}

func TestStore_List_FilterAndPaging(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := organizationstore.New(db)

	fx.CreateOrganization(ctx, "Chess Club")
	fx.CreateOrganization(ctx, "Robotics Club")
	fx.CreateOrganization(ctx, "Debate Society")

	clubs, err := store.List(ctx, "club", 1, 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(clubs) != 2 {
		t.Errorf("expected 2 clubs, got %d", len(clubs))
	}
	// name_ci sort puts Chess before Robotics.
	if len(clubs) == 2 && clubs[0].Name != "Chess Club" {
		t.Errorf("expected sorted results, got %q first", clubs[0].Name)
	}

	page2, err := store.List(ctx, "", 2, 2)
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(page2) != 1 {
		t.Errorf("expected 1 result on page 2, got %d", len(page2))
	}

	n, err := store.Count(ctx, "club")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("expected count 2, got %d", n)
	}
}

func TestStore_All_SpansWindows(t *testing.T) {
	if testing.Short() {
		t.Skip("bulk insert test skipped in short mode")
	}
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := organizationstore.New(db)

	const total = 120
	for i := 0; i < total; i++ {
		fx.CreateOrganization(ctx, fmt.Sprintf("Org %03d", i))
	}

	all, err := store.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != total {
		t.Errorf("expected %d organizations, got %d", total, len(all))
	}
}

func TestStore_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := organizationstore.New(db)

	org := fx.CreateOrganization(ctx, "Robotics Club")

	err := store.Update(ctx, org.ID, models.Organization{
		Bio:              "New bio",
		IsApplicationReq: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.GetByID(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Bio != "New bio" || !got.IsApplicationReq {
		t.Errorf("update not applied: %+v", got)
	}
}
