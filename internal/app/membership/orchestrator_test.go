package membership

import (
	"testing"
	"time"

	applicationstore "github.com/dalemusser/campushub/internal/app/store/applications"
	formstore "github.com/dalemusser/campushub/internal/app/store/forms"
	joinedorgstore "github.com/dalemusser/campushub/internal/app/store/joinedorgs"
	orgaccountstore "github.com/dalemusser/campushub/internal/app/store/orgaccounts"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	savedorgstore "github.com/dalemusser/campushub/internal/app/store/savedorgs"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/dalemusser/campushub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newOrchestrator(db *mongo.Database) *Orchestrator {
	return NewOrchestrator(
		organizationstore.New(db),
		orgaccountstore.New(db),
		joinedorgstore.New(db),
		savedorgstore.New(db),
		applicationstore.New(db),
		formstore.New(db),
		zap.NewNop(),
	)
}

func TestJoinOpenOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateOrganization(ctx, "Hiking Club")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	res, err := o.Join(ctx, user.ID, org.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.Status != StatusJoined || res.Membership == nil {
		t.Fatalf("expected joined result, got %+v", res)
	}

	exists, err := joinedorgstore.New(db).Exists(ctx, user.ID, org.ID)
	if err != nil || !exists {
		t.Errorf("membership not recorded: exists=%v err=%v", exists, err)
	}
}

func TestJoinRemovesSavedEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateOrganization(ctx, "Hiking Club")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)
	// An unlinked save whose folded name matches the catalog entry.
	fx.CreateSavedOrg(ctx, user.ID, nil, "HIKING  club")

	res, err := o.Join(ctx, user.ID, org.ID)
	if err != nil || res.Status != StatusJoined {
		t.Fatalf("Join: res=%+v err=%v", res, err)
	}

	saves, err := savedorgstore.New(db).ListByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(saves) != 0 {
		t.Errorf("saved entry should be removed after join, got %v", saves)
	}
}

func TestJoinNotOnPlatform(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	org := fx.CreateOrganization(ctx, "Off Platform Club")

	res, err := o.Join(ctx, user.ID, org.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonNotOnPlatform {
		t.Errorf("expected not-on-platform rejection, got %+v", res)
	}
	if !res.CanSaveInstead {
		t.Error("off-platform rejection should offer saving instead")
	}
}

func TestJoinApplicationOrgRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	res, err := o.Join(ctx, user.ID, org.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonRequiresForm {
		t.Errorf("expected requires-form rejection, got %+v", res)
	}
}

func TestJoinTwiceRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateOrganization(ctx, "Hiking Club")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	if res, err := o.Join(ctx, user.ID, org.ID); err != nil || res.Status != StatusJoined {
		t.Fatalf("first join: res=%+v err=%v", res, err)
	}
	res, err := o.Join(ctx, user.ID, org.ID)
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonAlreadyMember {
		t.Errorf("expected already-member rejection, got %+v", res)
	}
}

func TestApplyHappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)
	_, q := fx.CreateForm(ctx, org.ID, "Why do you want to join?")

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{
		ApplicantName:  "Test Student",
		ApplicantEmail: "student@test.edu",
		Justification:  "I want to get involved.",
		Responses: []models.QuestionResponse{
			{QuestionID: q.ID.Hex(), Type: models.QuestionShortText, Text: "Because it looks great."},
		},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != StatusApplied || res.Application == nil {
		t.Fatalf("expected applied result, got %+v", res)
	}
	if res.Application.Status != models.ApplicationPending {
		t.Errorf("application status: got %q, want pending", res.Application.Status)
	}
}

func TestApplyClosedWithReopenHint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, false)

	reopen := time.Now().UTC().Add(30 * 24 * time.Hour).Truncate(time.Millisecond)
	if err := orgaccountstore.New(db).UpdateSettings(ctx, org.ID, orgaccountstore.SettingsInput{
		AcceptingApplications: false,
		ApplicationsReopenAt:  &reopen,
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonApplicationsClosed {
		t.Fatalf("expected closed rejection, got %+v", res)
	}
	if res.ReopenAt == nil || !res.ReopenAt.Equal(reopen) {
		t.Errorf("reopen hint: got %v, want %v", res.ReopenAt, reopen)
	}
}

func TestApplyDeadlinePassed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	deadline := time.Now().UTC().Add(-24 * time.Hour)
	if err := orgaccountstore.New(db).UpdateSettings(ctx, org.ID, orgaccountstore.SettingsInput{
		AcceptingApplications: true,
		ApplicationDeadline:   &deadline,
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonApplicationsClosed {
		t.Errorf("expected closed rejection after deadline, got %+v", res)
	}
}

func TestApplyFormFlaggedButMissingRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)
	// The account advertises a custom form but none has been saved yet.
	if err := orgaccountstore.New(db).SetHasCustomForm(ctx, org.ID, true); err != nil {
		t.Fatalf("SetHasCustomForm: %v", err)
	}

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{Justification: "Let me in."})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonFormUnavailable {
		t.Errorf("expected form-unavailable rejection, got %+v", res)
	}
}

func TestApplyJustificationOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	// No custom form: the application is the single justification field.
	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{
		ApplicantName:  "Test Student",
		ApplicantEmail: "student@test.edu",
		Justification:  "I led a robotics team in high school.",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != StatusApplied || res.Application == nil {
		t.Fatalf("expected applied result, got %+v", res)
	}
	if res.Application.Justification != "I led a robotics team in high school." {
		t.Errorf("justification not recorded: %+v", res.Application)
	}
	if len(res.Application.Responses) != 0 {
		t.Errorf("justification-only application should carry no form responses: %+v", res.Application)
	}
}

func TestApplyBlankJustificationRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{Justification: "   "})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonInvalidResponses {
		t.Errorf("expected invalid-responses rejection, got %+v", res)
	}
}

func TestApplyTwiceRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)
	_, q := fx.CreateForm(ctx, org.ID, "Why?")

	in := ApplyInput{
		Responses: []models.QuestionResponse{
			{QuestionID: q.ID.Hex(), Type: models.QuestionShortText, Text: "Because."},
		},
	}
	if res, err := o.Apply(ctx, user.ID, org.ID, in); err != nil || res.Status != StatusApplied {
		t.Fatalf("first apply: res=%+v err=%v", res, err)
	}
	res, err := o.Apply(ctx, user.ID, org.ID, in)
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if res.Status != StatusRejected || res.Reason != ReasonApplicationPending {
		t.Errorf("expected pending-application rejection, got %+v", res)
	}
}

func TestApproveConvertsApplication(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)
	_, q := fx.CreateForm(ctx, org.ID, "Why?")

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{
		Responses: []models.QuestionResponse{
			{QuestionID: q.ID.Hex(), Type: models.QuestionShortText, Text: "Because."},
		},
	})
	if err != nil || res.Status != StatusApplied {
		t.Fatalf("apply: res=%+v err=%v", res, err)
	}

	m, err := o.Approve(ctx, res.Application.ID, org.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if m.UserID != user.ID || m.OrganizationID != org.ID {
		t.Errorf("membership identity mismatch: %+v", m)
	}

	exists, err := joinedorgstore.New(db).Exists(ctx, user.ID, org.ID)
	if err != nil || !exists {
		t.Errorf("membership not recorded: exists=%v err=%v", exists, err)
	}
	app, err := applicationstore.New(db).GetByID(ctx, res.Application.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if app != nil {
		t.Error("application should be removed after approval")
	}
}

func TestApproveWrongOrganization(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	fx := testutil.NewFixtures(t, db)
	o := newOrchestrator(db)

	user := fx.CreateStudent(ctx, "student@test.edu")
	admin := fx.CreateOrgAdmin(ctx, "admin@test.edu")
	org := fx.CreateApplicationOrg(ctx, "Selective Society")
	other := fx.CreateOrganization(ctx, "Other Club")
	fx.CreateOrgAccount(ctx, org.ID, admin.ID, true)
	_, q := fx.CreateForm(ctx, org.ID, "Why?")

	res, err := o.Apply(ctx, user.ID, org.ID, ApplyInput{
		Responses: []models.QuestionResponse{
			{QuestionID: q.ID.Hex(), Type: models.QuestionShortText, Text: "Because."},
		},
	})
	if err != nil || res.Status != StatusApplied {
		t.Fatalf("apply: res=%+v err=%v", res, err)
	}

	if _, err := o.Approve(ctx, res.Application.ID, other.ID); err == nil {
		t.Error("approving from the wrong organization should fail")
	}
}
