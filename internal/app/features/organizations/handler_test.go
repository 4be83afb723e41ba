package organizations_test

import (
	"encoding/json"
	"testing"

	"github.com/dalemusser/campushub/internal/app/features/organizations"
	orgaccountstore "github.com/dalemusser/campushub/internal/app/store/orgaccounts"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	usercontextstore "github.com/dalemusser/campushub/internal/app/store/usercontext"
	"github.com/dalemusser/campushub/internal/app/system/feed"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *organizations.Handler {
	hub := usercache.NewHub(usercontextstore.New(db), feed.NewMongoFeed(db, zap.NewNop()), zap.NewNop())
	return organizations.NewHandler(organizationstore.New(db), orgaccountstore.New(db), hub, zap.NewNop())
}

type listResponse struct {
	Organizations []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Joined bool   `json:"joined"`
		Saved  bool   `json:"saved"`
	} `json:"organizations"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func TestHandler_List_FlagsViewerRelationships(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	joined := fx.CreateOrganization(ctx, "Robotics Club")
	savedOrg := fx.CreateOrganization(ctx, "Chess Club")
	fx.CreateOrganization(ctx, "Hiking Club")
	fx.CreateMembership(ctx, student.ID, joined.ID)
	fx.CreateSavedOrg(ctx, student.ID, &savedOrg.ID, savedOrg.Name)

	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/organizations", user))

	rec.AssertStatus(t, 200)
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Total != 3 || len(resp.Organizations) != 3 {
		t.Fatalf("expected 3 organizations, got total=%d len=%d", resp.Total, len(resp.Organizations))
	}
	for _, org := range resp.Organizations {
		wantJoined := org.ID == joined.ID.Hex()
		wantSaved := org.ID == savedOrg.ID.Hex()
		if org.Joined != wantJoined || org.Saved != wantSaved {
			t.Errorf("%s: joined=%v saved=%v, want joined=%v saved=%v",
				org.Name, org.Joined, org.Saved, wantJoined, wantSaved)
		}
	}
}

func TestHandler_List_PagingParams(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	fx.CreateOrganization(ctx, "Alpine Club")
	fx.CreateOrganization(ctx, "Board Game Society")
	fx.CreateOrganization(ctx, "Chess Club")

	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/organizations?page=2&page_size=2", user))

	rec.AssertStatus(t, 200)
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Page != 2 || resp.PageSize != 2 {
		t.Errorf("echoed paging: page=%d page_size=%d, want 2 and 2", resp.Page, resp.PageSize)
	}
	if resp.Total != 3 {
		t.Errorf("total: got %d, want 3", resp.Total)
	}
	if len(resp.Organizations) != 1 || resp.Organizations[0].Name != "Chess Club" {
		t.Errorf("second page should hold only Chess Club, got %+v", resp.Organizations)
	}
}

func TestHandler_List_Search(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	fx.CreateOrganization(ctx, "Robotics Club")
	fx.CreateOrganization(ctx, "Chess Club")

	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}
	rec := testutil.NewRecorder()
	h.ServeList(rec, testutil.NewAuthenticatedRequest("GET", "/organizations?search=robot", user))

	rec.AssertStatus(t, 200)
	var resp listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Organizations) != 1 || resp.Organizations[0].Name != "Robotics Club" {
		t.Errorf("search should match only Robotics Club, got %+v", resp.Organizations)
	}
}

func TestHandler_Detail_MergesPlatformStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Consulting Group")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}
	req := testutil.WithChiURLParam(
		testutil.NewAuthenticatedRequest("GET", "/organizations/"+org.ID.Hex(), user), "id", org.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeDetail(rec, req)

	rec.AssertStatus(t, 200)
	rec.AssertContains(t, `"on_platform":true`)
	rec.AssertContains(t, `"accepting_applications":true`)
}

func TestHandler_Detail_OffPlatformOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Hiking Club")

	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}
	req := testutil.WithChiURLParam(
		testutil.NewAuthenticatedRequest("GET", "/organizations/"+org.ID.Hex(), user), "id", org.ID.Hex())
	rec := testutil.NewRecorder()
	h.ServeDetail(rec, req)

	rec.AssertStatus(t, 200)
	rec.AssertContains(t, `"on_platform":false`)
}

func TestHandler_Detail_UnknownOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}

	id := primitive.NewObjectID().Hex()
	req := testutil.WithChiURLParam(
		testutil.NewAuthenticatedRequest("GET", "/organizations/"+id, user), "id", id)
	rec := testutil.NewRecorder()
	h.ServeDetail(rec, req)
	rec.AssertStatus(t, 404)
}
