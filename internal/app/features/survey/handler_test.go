package survey_test

import (
	"testing"

	"github.com/dalemusser/campushub/internal/app/features/survey"
	surveystore "github.com/dalemusser/campushub/internal/app/store/surveys"
	usercontextstore "github.com/dalemusser/campushub/internal/app/store/usercontext"
	"github.com/dalemusser/campushub/internal/app/system/feed"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *survey.Handler {
	hub := usercache.NewHub(usercontextstore.New(db), feed.NewMongoFeed(db, zap.NewNop()), zap.NewNop())
	return survey.NewHandler(surveystore.New(db), hub, zap.NewNop())
}

func TestHandler_Latest_NoSubmission(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}

	rec := testutil.NewRecorder()
	h.ServeLatest(rec, testutil.NewAuthenticatedRequest("GET", "/survey", user))
	rec.AssertStatus(t, 200)
	rec.AssertContains(t, `"completed":false`)
}

func TestHandler_Submit_LatestWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}

	rec := testutil.NewRecorder()
	h.HandleSubmit(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/survey",
		`{"query": "I want to build robots", "demographics": {"major": "Computer Science", "classification": "sophomore"}}`), user))
	rec.AssertStatus(t, 200)
	rec.AssertContains(t, `"completed":true`)

	rec = testutil.NewRecorder()
	h.HandleSubmit(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/survey",
		`{"query": "I want to play chess", "demographics": {"major": "Mathematics"}}`), user))
	rec.AssertStatus(t, 200)

	// A fresh handler (and cache) sees only the latest submission.
	rec = testutil.NewRecorder()
	newHandler(db).ServeLatest(rec, testutil.NewAuthenticatedRequest("GET", "/survey", user))
	rec.AssertStatus(t, 200)
	rec.AssertContains(t, "I want to play chess")

	latest, err := surveystore.New(db).Latest(ctx, student.ID)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if latest == nil || latest.Query != "I want to play chess" {
		t.Errorf("latest submission should win, got %+v", latest)
	}
}

func TestHandler_Submit_RequiresQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	h := newHandler(db)

	student := fx.CreateStudent(ctx, "student@test.edu")
	user := testutil.TestUser{ID: student.ID.Hex(), Email: student.Email, Role: student.Role}

	rec := testutil.NewRecorder()
	h.HandleSubmit(rec, testutil.WithUser(testutil.NewJSONRequest("POST", "/survey",
		`{"query": "   "}`), user))
	rec.AssertStatus(t, 400)
}
