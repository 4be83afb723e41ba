package formstore_test

import (
	"testing"

	formstore "github.com/dalemusser/campushub/internal/app/store/forms"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_GetByOrg_NoForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := formstore.New(db)

	org := fx.CreateOrganization(ctx, "Robotics Club")

	form, questions, err := store.GetByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByOrg: %v", err)
	}
	if form != nil || questions != nil {
		t.Errorf("expected no form, got %+v / %+v", form, questions)
	}
}

func TestStore_Replace_InstallsOrderedQuestions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := formstore.New(db)

	org := fx.CreateOrganization(ctx, "Selective Society")

	form, err := store.Replace(ctx, org.ID, "Membership Application", []formstore.QuestionInput{
		{Prompt: "Why do you want to join?", Type: models.QuestionLongText, Required: true, WordLimit: 200},
		{Prompt: "Meeting availability", Type: models.QuestionMultipleChoice, Required: true, Options: []string{"Weekly", "Monthly"}},
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, questions, err := store.GetByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByOrg: %v", err)
	}
	if got == nil || got.ID != form.ID {
		t.Fatalf("expected form %s, got %+v", form.ID.Hex(), got)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}
	if questions[0].Position != 0 || questions[0].Prompt != "Why do you want to join?" {
		t.Errorf("questions out of order: %+v", questions)
	}
	if questions[1].Type != models.QuestionMultipleChoice || len(questions[1].Options) != 2 {
		t.Errorf("second question malformed: %+v", questions[1])
	}
}

func TestStore_Replace_DiscardsOldForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := formstore.New(db)

	org := fx.CreateOrganization(ctx, "Selective Society")

	first, err := store.Replace(ctx, org.ID, "Old Form", []formstore.QuestionInput{
		{Prompt: "Old question", Type: models.QuestionShortText, Required: true},
	})
	if err != nil {
		t.Fatalf("first Replace: %v", err)
	}

	second, err := store.Replace(ctx, org.ID, "New Form", []formstore.QuestionInput{
		{Prompt: "New question", Type: models.QuestionShortText, Required: true},
	})
	if err != nil {
		t.Fatalf("second Replace: %v", err)
	}

	got, questions, err := store.GetByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByOrg: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("expected newest form, got %+v", got)
	}
	if len(questions) != 1 || questions[0].Prompt != "New question" {
		t.Errorf("old questions should be gone: %+v", questions)
	}

	// Old question set must be fully deleted.
	n, err := db.Collection("form_questions").CountDocuments(ctx, bson.M{"form_id": first.ID})
	if err != nil {
		t.Fatalf("count old questions: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 old questions, got %d", n)
	}
}

func TestStore_Replace_RejectsEmptyForm(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := formstore.New(db)

	org := fx.CreateOrganization(ctx, "Selective Society")
	if _, err := store.Replace(ctx, org.ID, "Empty", nil); err == nil {
		t.Error("expected error for form with no questions")
	}
}

func TestStore_DeleteByOrg(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	store := formstore.New(db)

	org := fx.CreateOrganization(ctx, "Selective Society")
	if _, err := store.Replace(ctx, org.ID, "Form", []formstore.QuestionInput{
		{Prompt: "Q", Type: models.QuestionShortText},
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	if err := store.DeleteByOrg(ctx, org.ID); err != nil {
		t.Fatalf("DeleteByOrg: %v", err)
	}
	form, _, err := store.GetByOrg(ctx, org.ID)
	if err != nil {
		t.Fatalf("GetByOrg: %v", err)
	}
	if form != nil {
		t.Error("form should be deleted")
	}

	// Deleting again is a no-op.
	if err := store.DeleteByOrg(ctx, org.ID); err != nil {
		t.Fatalf("second DeleteByOrg: %v", err)
	}
}
