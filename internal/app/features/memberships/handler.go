// internal/app/features/memberships/handler.go
package memberships

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/campushub/internal/app/membership"
	formstore "github.com/dalemusser/campushub/internal/app/store/forms"
	joinedorgstore "github.com/dalemusser/campushub/internal/app/store/joinedorgs"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's memberships and the join/apply actions.
type Handler struct {
	Flow   *membership.Orchestrator
	Joined *joinedorgstore.Store
	Orgs   *organizationstore.Store
	Forms  *formstore.Store
	Log    *zap.Logger
}

func NewHandler(flow *membership.Orchestrator, joined *joinedorgstore.Store, orgs *organizationstore.Store, forms *formstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Flow: flow, Joined: joined, Orgs: orgs, Forms: forms, Log: logger}
}

type membershipItem struct {
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Bio            string    `json:"bio,omitempty"`
	Role           string    `json:"role"`
	Title          string    `json:"title,omitempty"`
	JoinedAt       time.Time `json:"joined_at"`
}

// ServeList handles GET /memberships.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	memberships, err := h.Joined.ListByUser(ctx, uid)
	if err != nil {
		h.Log.Error("memberships: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	orgIDs := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		orgIDs = append(orgIDs, m.OrganizationID)
	}
	orgs, err := h.Orgs.GetByIDs(ctx, orgIDs)
	if err != nil {
		h.Log.Error("memberships: load organizations", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	byID := make(map[primitive.ObjectID]models.Organization, len(orgs))
	for _, org := range orgs {
		byID[org.ID] = org
	}

	items := make([]membershipItem, 0, len(memberships))
	for _, m := range memberships {
		org := byID[m.OrganizationID]
		items = append(items, membershipItem{
			OrganizationID: m.OrganizationID.Hex(),
			Name:           org.Name,
			Bio:            org.Bio,
			Role:           m.Role,
			Title:          m.Title,
			JoinedAt:       m.JoinedAt,
		})
	}
	httpjson.OK(w, map[string]any{"memberships": items})
}

type rejectionResponse struct {
	Success        bool       `json:"success"`
	Status         string     `json:"status"`
	Reason         string     `json:"reason"`
	Detail         string     `json:"detail,omitempty"`
	ReopenAt       *time.Time `json:"reopen_at,omitempty"`
	CanSaveInstead bool       `json:"can_save_instead,omitempty"`
}

// writeResult translates an orchestrator Result into the HTTP response.
// Successful outcomes return the created record; rejections return 409 with
// the reason, or 422 when the submitted responses failed form validation.
func (h *Handler) writeResult(w http.ResponseWriter, res membership.Result) {
	switch res.Status {
	case membership.StatusJoined:
		httpjson.OK(w, map[string]any{"status": res.Status, "membership": res.Membership})
	case membership.StatusApplied:
		httpjson.Created(w, map[string]any{"status": res.Status, "application": res.Application})
	default:
		status := http.StatusConflict
		if res.Reason == membership.ReasonInvalidResponses {
			status = http.StatusUnprocessableEntity
		}
		httpjson.Write(w, status, rejectionResponse{
			Status:         res.Status,
			Reason:         res.Reason,
			Detail:         res.Detail,
			ReopenAt:       res.ReopenAt,
			CanSaveInstead: res.CanSaveInstead,
		})
	}
}

func orgIDParam(r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "orgID"))
	return id, err == nil
}

// HandleJoin handles POST /memberships/{orgID}/join.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	orgID, ok := orgIDParam(r)
	if !ok {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Flow.Join(ctx, uid, orgID)
	if err == membership.ErrOrganizationNotFound {
		httpjson.NotFound(w, "organization not found")
		return
	}
	if err != nil {
		h.Log.Error("memberships: join", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	h.writeResult(w, res)
}

type applyRequest struct {
	ApplicantName  string                    `json:"applicant_name"`
	ApplicantEmail string                    `json:"applicant_email"`
	Justification  string                    `json:"justification"`
	Responses      []models.QuestionResponse `json:"responses"`
}

// HandleApply handles POST /memberships/{orgID}/apply.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	orgID, ok := orgIDParam(r)
	if !ok {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	var req applyRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	res, err := h.Flow.Apply(ctx, uid, orgID, membership.ApplyInput{
		ApplicantName:  req.ApplicantName,
		ApplicantEmail: req.ApplicantEmail,
		Justification:  req.Justification,
		Responses:      req.Responses,
	})
	if err == membership.ErrOrganizationNotFound {
		httpjson.NotFound(w, "organization not found")
		return
	}
	if err != nil {
		h.Log.Error("memberships: apply", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	h.writeResult(w, res)
}

// HandleLeave handles DELETE /memberships/{orgID}.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	orgID, ok := orgIDParam(r)
	if !ok {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	removed, err := h.Joined.Remove(ctx, uid, orgID)
	if err != nil {
		h.Log.Error("memberships: leave", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if removed == 0 {
		httpjson.NotFound(w, "membership not found")
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}

type formResponse struct {
	FormID    string                `json:"form_id"`
	Title     string                `json:"title,omitempty"`
	Questions []models.FormQuestion `json:"questions"`
}

// ServeForm handles GET /memberships/{orgID}/form: the applicant-facing view
// of an organization's application form.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUserID(r); !ok {
		httpjson.Unauthorized(w)
		return
	}
	orgID, ok := orgIDParam(r)
	if !ok {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	form, questions, err := h.Forms.GetByOrg(ctx, orgID)
	if err != nil {
		h.Log.Error("memberships: load form", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if form == nil {
		httpjson.NotFound(w, "this organization has no application form")
		return
	}
	httpjson.OK(w, formResponse{
		FormID:    form.ID.Hex(),
		Title:     form.Title,
		Questions: questions,
	})
}
