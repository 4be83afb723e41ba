// Package membership orchestrates the paths by which a student becomes a
// member of an organization: a direct join for open organizations and an
// application for application-based ones. All guard checks live here so
// handlers only translate Results to HTTP.
package membership

import (
	"time"

	"github.com/dalemusser/campushub/internal/domain/models"
)

// Statuses reported in a Result.
const (
	StatusJoined   = "joined"
	StatusApplied  = "applied"
	StatusRejected = "rejected"
)

// Reasons explaining a rejected Result.
const (
	ReasonNotOnPlatform       = "organization is not on the platform"
	ReasonAlreadyMember       = "you are already a member of this organization"
	ReasonApplicationPending  = "you already have a pending application with this organization"
	ReasonApplicationsClosed  = "Applications Currently Closed"
	ReasonFormUnavailable     = "this organization's application is not yet available"
	ReasonRequiresForm        = "this organization requires an application"
	ReasonNoApplicationNeeded = "this organization does not require an application"
	ReasonInvalidResponses    = "application responses are invalid"
)

// Result is the typed outcome of a join or apply attempt. Rejections carry a
// Reason; CanSaveInstead marks rejections where saving the organization is
// the suggested alternative. ReopenAt surfaces the advertised reopening time
// when applications are closed but expected back.
type Result struct {
	Status         string
	Reason         string
	Detail         string
	ReopenAt       *time.Time
	CanSaveInstead bool
	Membership     *models.JoinedOrganization
	Application    *models.Application
}

func rejected(reason string) Result {
	return Result{Status: StatusRejected, Reason: reason}
}
