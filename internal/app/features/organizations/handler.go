// internal/app/features/organizations/handler.go
package organizations

import (
	"context"
	"net/http"
	"time"

	orgaccountstore "github.com/dalemusser/campushub/internal/app/store/orgaccounts"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/paging"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the organization catalog.
type Handler struct {
	Orgs     *organizationstore.Store
	Accounts *orgaccountstore.Store
	Hub      *usercache.Hub
	Log      *zap.Logger
}

func NewHandler(orgs *organizationstore.Store, accounts *orgaccountstore.Store, hub *usercache.Hub, logger *zap.Logger) *Handler {
	return &Handler{Orgs: orgs, Accounts: accounts, Hub: hub, Log: logger}
}

type orgSummary struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Bio              string `json:"bio,omitempty"`
	MemberCountEst   int    `json:"member_count_est,omitempty"`
	IsApplicationReq bool   `json:"is_application_based"`
	Joined           bool   `json:"joined"`
	Saved            bool   `json:"saved"`
}

type listResponse struct {
	Organizations []orgSummary `json:"organizations"`
	Page          int          `json:"page"`
	PageSize      int          `json:"page_size"`
	Total         int64        `json:"total"`
}

// ServeList handles GET /organizations?search=&page=&page_size=. Joined and
// saved flags come from the viewer's relationship cache, so every open view
// reflects the same state.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	search := r.URL.Query().Get("search")
	page := paging.ParsePage(r)
	pageSize := paging.ParsePageSize(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	orgs, err := h.Orgs.List(ctx, search, page, pageSize)
	if err != nil {
		h.Log.Error("organizations: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	total, err := h.Orgs.Count(ctx, search)
	if err != nil {
		h.Log.Error("organizations: count", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	entry, err := h.Hub.Entry(ctx, uid)
	if err != nil {
		h.Log.Error("organizations: load cache entry", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	summaries := make([]orgSummary, 0, len(orgs))
	for _, org := range orgs {
		summaries = append(summaries, orgSummary{
			ID:               org.ID.Hex(),
			Name:             org.Name,
			Bio:              org.Bio,
			MemberCountEst:   org.MemberCountEst,
			IsApplicationReq: org.IsApplicationReq,
			Joined:           entry.Relationships.HasJoined(org.ID),
			Saved:            entry.Relationships.HasSaved(org.ID),
		})
	}

	httpjson.OK(w, listResponse{
		Organizations: summaries,
		Page:          page,
		PageSize:      pageSize,
		Total:         total,
	})
}

type orgDetail struct {
	orgSummary
	Website               string     `json:"website,omitempty"`
	MeetingSchedule       string     `json:"meeting_schedule,omitempty"`
	MeetingLocation       string     `json:"meeting_location,omitempty"`
	Dues                  string     `json:"dues,omitempty"`
	AppRequirements       string     `json:"app_requirements,omitempty"`
	TypicalMajors         string     `json:"typical_majors,omitempty"`
	TypicalActivity       string     `json:"typical_activities,omitempty"`
	CultureStyle          string     `json:"culture_style,omitempty"`
	OnPlatform            bool       `json:"on_platform"`
	AcceptingApplications bool       `json:"accepting_applications"`
	ApplicationDeadline   *time.Time `json:"application_deadline,omitempty"`
	ApplicationsReopenAt  *time.Time `json:"applications_reopen_at,omitempty"`
	HasCustomForm         bool       `json:"has_custom_form"`
}

// ServeDetail handles GET /organizations/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	orgID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid organization id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	org, err := h.Orgs.GetByID(ctx, orgID)
	if err == mongo.ErrNoDocuments {
		httpjson.NotFound(w, "organization not found")
		return
	}
	if err != nil {
		h.Log.Error("organizations: get", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	acct, err := h.Accounts.GetByOrg(ctx, orgID)
	if err != nil {
		h.Log.Error("organizations: get account", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	entry, err := h.Hub.Entry(ctx, uid)
	if err != nil {
		h.Log.Error("organizations: load cache entry", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.OK(w, buildDetail(org, acct, entry))
}

func buildDetail(org models.Organization, acct *models.OrgAccount, entry *usercache.Entry) orgDetail {
	d := orgDetail{
		orgSummary: orgSummary{
			ID:               org.ID.Hex(),
			Name:             org.Name,
			Bio:              org.Bio,
			MemberCountEst:   org.MemberCountEst,
			IsApplicationReq: org.IsApplicationReq,
			Joined:           entry.Relationships.HasJoined(org.ID),
			Saved:            entry.Relationships.HasSaved(org.ID),
		},
		Website:         org.Website,
		MeetingSchedule: org.MeetingSchedule,
		MeetingLocation: org.MeetingLocation,
		Dues:            org.Dues,
		AppRequirements: org.AppRequirements,
		TypicalMajors:   org.TypicalMajors,
		TypicalActivity: org.TypicalActivity,
		CultureStyle:    org.CultureStyle,
	}
	if acct != nil && acct.Active {
		d.OnPlatform = true
		d.AcceptingApplications = acct.AcceptingApplications
		d.ApplicationDeadline = acct.ApplicationDeadline
		d.ApplicationsReopenAt = acct.ApplicationsReopenAt
		d.HasCustomForm = acct.HasCustomForm
	}
	return d
}
