package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	applicationstore "github.com/dalemusser/campushub/internal/app/store/applications"
	formstore "github.com/dalemusser/campushub/internal/app/store/forms"
	joinedorgstore "github.com/dalemusser/campushub/internal/app/store/joinedorgs"
	orgaccountstore "github.com/dalemusser/campushub/internal/app/store/orgaccounts"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	savedorgstore "github.com/dalemusser/campushub/internal/app/store/savedorgs"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Orchestrator coordinates joins, applications, and approvals across the
// membership-related stores.
type Orchestrator struct {
	orgs     *organizationstore.Store
	accounts *orgaccountstore.Store
	joined   *joinedorgstore.Store
	saved    *savedorgstore.Store
	apps     *applicationstore.Store
	forms    *formstore.Store
	log      *zap.Logger
}

func NewOrchestrator(
	orgs *organizationstore.Store,
	accounts *orgaccountstore.Store,
	joined *joinedorgstore.Store,
	saved *savedorgstore.Store,
	apps *applicationstore.Store,
	forms *formstore.Store,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		orgs:     orgs,
		accounts: accounts,
		joined:   joined,
		saved:    saved,
		apps:     apps,
		forms:    forms,
		log:      log,
	}
}

// ErrOrganizationNotFound reports a join or apply attempt against an
// organization that is not in the catalog at all.
var ErrOrganizationNotFound = errors.New("organization not found")

// platformAccount loads the organization and its platform account, rejecting
// attempts against organizations that are off-platform or inactive.
func (o *Orchestrator) platformAccount(ctx context.Context, orgID primitive.ObjectID) (models.Organization, *models.OrgAccount, *Result, error) {
	org, err := o.orgs.GetByID(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		return models.Organization{}, nil, nil, ErrOrganizationNotFound
	}
	if err != nil {
		return models.Organization{}, nil, nil, err
	}
	acct, err := o.accounts.GetByOrg(ctx, orgID)
	if err != nil {
		return models.Organization{}, nil, nil, err
	}
	if acct == nil || !acct.Active {
		res := rejected(ReasonNotOnPlatform)
		res.CanSaveInstead = true
		return org, nil, &res, nil
	}
	return org, acct, nil, nil
}

// Join adds the user directly to an open organization. Application-based
// organizations reject the direct path and point at the apply flow. On
// success any saved entry for the organization is removed; membership and
// saved are mutually exclusive states.
func (o *Orchestrator) Join(ctx context.Context, userID, orgID primitive.ObjectID) (Result, error) {
	org, _, reject, err := o.platformAccount(ctx, orgID)
	if err != nil {
		return Result{}, err
	}
	if reject != nil {
		return *reject, nil
	}

	if org.IsApplicationReq {
		return rejected(ReasonRequiresForm), nil
	}

	isMember, err := o.joined.Exists(ctx, userID, orgID)
	if err != nil {
		return Result{}, err
	}
	if isMember {
		return rejected(ReasonAlreadyMember), nil
	}

	m, err := o.joined.Add(ctx, userID, orgID, models.MembershipRoleMember, "")
	if err == joinedorgstore.ErrDuplicateMembership {
		return rejected(ReasonAlreadyMember), nil
	}
	if err != nil {
		return Result{}, err
	}

	if _, err := o.saved.DeleteByOrg(ctx, userID, orgID, org.Name); err != nil {
		// The membership is already recorded; log and let the saved list catch
		// up on the next write.
		o.log.Warn("failed to remove saved entry after join",
			zap.String("user_id", userID.Hex()),
			zap.String("organization_id", orgID.Hex()),
			zap.Error(err))
	}

	return Result{Status: StatusJoined, Membership: &m}, nil
}

// ApplyInput carries an application submission.
type ApplyInput struct {
	ApplicantName  string
	ApplicantEmail string
	Justification  string
	Responses      []models.QuestionResponse
}

// Apply submits an application to an application-based organization. The
// full guard chain runs before anything is written: the organization must be
// accepting applications and inside any deadline, and the submission must
// satisfy the organization's custom form, or carry a justification when the
// organization has none. The application is recorded in a single write.
func (o *Orchestrator) Apply(ctx context.Context, userID, orgID primitive.ObjectID, in ApplyInput) (Result, error) {
	org, acct, reject, err := o.platformAccount(ctx, orgID)
	if err != nil {
		return Result{}, err
	}
	if reject != nil {
		return *reject, nil
	}

	if !org.IsApplicationReq {
		return rejected(ReasonNoApplicationNeeded), nil
	}

	isMember, err := o.joined.Exists(ctx, userID, orgID)
	if err != nil {
		return Result{}, err
	}
	if isMember {
		return rejected(ReasonAlreadyMember), nil
	}

	pending, err := o.apps.ExistsPending(ctx, userID, orgID)
	if err != nil {
		return Result{}, err
	}
	if pending {
		return rejected(ReasonApplicationPending), nil
	}

	if res, closed := applicationsClosed(acct, time.Now().UTC()); closed {
		return res, nil
	}

	if acct.HasCustomForm {
		form, questions, err := o.forms.GetByOrg(ctx, orgID)
		if err != nil {
			return Result{}, err
		}
		if form == nil || len(questions) == 0 {
			return rejected(ReasonFormUnavailable), nil
		}
		if err := validateResponses(questions, in.Responses); err != nil {
			res := rejected(ReasonInvalidResponses)
			res.Detail = err.Error()
			return res, nil
		}
	} else if strings.TrimSpace(in.Justification) == "" {
		// Without a custom form the application is the single free-text
		// justification field.
		res := rejected(ReasonInvalidResponses)
		res.Detail = "a justification is required"
		return res, nil
	}

	app, err := o.apps.Create(ctx, applicationstore.Input{
		UserID:         userID,
		OrganizationID: orgID,
		ApplicantName:  in.ApplicantName,
		ApplicantEmail: in.ApplicantEmail,
		Justification:  in.Justification,
		Responses:      in.Responses,
	})
	if err == applicationstore.ErrDuplicateApplication {
		return rejected(ReasonApplicationPending), nil
	}
	if err != nil {
		return Result{}, err
	}

	return Result{Status: StatusApplied, Application: &app}, nil
}

// applicationsClosed evaluates the accepting flag and deadline, surfacing the
// advertised reopening time when one is set.
func applicationsClosed(acct *models.OrgAccount, now time.Time) (Result, bool) {
	closed := !acct.AcceptingApplications
	if !closed && acct.ApplicationDeadline != nil && now.After(*acct.ApplicationDeadline) {
		closed = true
	}
	if !closed {
		return Result{}, false
	}
	res := rejected(ReasonApplicationsClosed)
	if acct.ApplicationsReopenAt != nil && acct.ApplicationsReopenAt.After(now) {
		res.ReopenAt = acct.ApplicationsReopenAt
	}
	return res, true
}

// Approve converts a pending application into a membership and removes the
// application. The caller is responsible for verifying the approver
// administers orgID; Approve rejects applications from other organizations.
func (o *Orchestrator) Approve(ctx context.Context, appID, orgID primitive.ObjectID) (*models.JoinedOrganization, error) {
	app, err := o.apps.GetByID(ctx, appID)
	if err != nil {
		return nil, err
	}
	if app == nil || app.OrganizationID != orgID {
		return nil, fmt.Errorf("application not found")
	}

	m, err := o.joined.Add(ctx, app.UserID, app.OrganizationID, models.MembershipRoleMember, "")
	if err != nil && err != joinedorgstore.ErrDuplicateMembership {
		return nil, err
	}

	if _, err := o.apps.Delete(ctx, appID); err != nil {
		return nil, err
	}

	org, err := o.orgs.GetByID(ctx, app.OrganizationID)
	if err == nil {
		if _, err := o.saved.DeleteByOrg(ctx, app.UserID, app.OrganizationID, org.Name); err != nil {
			o.log.Warn("failed to remove saved entry after approval",
				zap.String("user_id", app.UserID.Hex()),
				zap.Error(err))
		}
	}

	return &m, nil
}
