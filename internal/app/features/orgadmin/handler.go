// internal/app/features/orgadmin/handler.go

// Package orgadmin serves the management surface for organization admins:
// application-policy settings, the custom application form, pending
// applications, and the event schedule. Every request resolves the admin's
// own org account first, so no handler trusts a client-supplied org id.
package orgadmin

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/campushub/internal/app/membership"
	applicationstore "github.com/dalemusser/campushub/internal/app/store/applications"
	eventstore "github.com/dalemusser/campushub/internal/app/store/events"
	formstore "github.com/dalemusser/campushub/internal/app/store/forms"
	orgaccountstore "github.com/dalemusser/campushub/internal/app/store/orgaccounts"
	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Accounts *orgaccountstore.Store
	Orgs     *organizationstore.Store
	Forms    *formstore.Store
	Apps     *applicationstore.Store
	Events   *eventstore.Store
	Flow     *membership.Orchestrator
	Log      *zap.Logger
}

func NewHandler(accounts *orgaccountstore.Store, orgs *organizationstore.Store, forms *formstore.Store, apps *applicationstore.Store, events *eventstore.Store, flow *membership.Orchestrator, logger *zap.Logger) *Handler {
	return &Handler{Accounts: accounts, Orgs: orgs, Forms: forms, Apps: apps, Events: events, Flow: flow, Log: logger}
}

// account resolves the org account administered by the requesting user.
// Writes the error response itself and returns nil when the request cannot
// proceed.
func (h *Handler) account(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.OrgAccount {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return nil
	}
	acct, err := h.Accounts.GetByAdmin(ctx, uid)
	if err != nil {
		h.Log.Error("orgadmin: resolve account", zap.Error(err))
		httpjson.ServerError(w)
		return nil
	}
	if acct == nil || !acct.Active {
		httpjson.Forbidden(w)
		return nil
	}
	return acct
}

type accountResponse struct {
	OrganizationID        string     `json:"organization_id"`
	OrganizationName      string     `json:"organization_name"`
	Active                bool       `json:"active"`
	AcceptingApplications bool       `json:"accepting_applications"`
	ApplicationDeadline   *time.Time `json:"application_deadline,omitempty"`
	ApplicationsReopenAt  *time.Time `json:"applications_reopen_at,omitempty"`
	HasCustomForm         bool       `json:"has_custom_form"`
}

// ServeAccount handles GET /orgadmin/account.
func (h *Handler) ServeAccount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	org, err := h.Orgs.GetByID(ctx, acct.OrganizationID)
	if err != nil {
		h.Log.Error("orgadmin: get organization", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, accountResponse{
		OrganizationID:        acct.OrganizationID.Hex(),
		OrganizationName:      org.Name,
		Active:                acct.Active,
		AcceptingApplications: acct.AcceptingApplications,
		ApplicationDeadline:   acct.ApplicationDeadline,
		ApplicationsReopenAt:  acct.ApplicationsReopenAt,
		HasCustomForm:         acct.HasCustomForm,
	})
}

type settingsRequest struct {
	AcceptingApplications bool       `json:"accepting_applications"`
	ApplicationDeadline   *time.Time `json:"application_deadline"`
	ApplicationsReopenAt  *time.Time `json:"applications_reopen_at"`
}

// HandleUpdateSettings handles PUT /orgadmin/account.
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	err := h.Accounts.UpdateSettings(ctx, acct.OrganizationID, orgaccountstore.SettingsInput{
		AcceptingApplications: req.AcceptingApplications,
		ApplicationDeadline:   req.ApplicationDeadline,
		ApplicationsReopenAt:  req.ApplicationsReopenAt,
	})
	if err != nil {
		h.Log.Error("orgadmin: update settings", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}

type formRequest struct {
	Title     string                    `json:"title"`
	Questions []formstore.QuestionInput `json:"questions"`
}

// ServeForm handles GET /orgadmin/form.
func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	form, questions, err := h.Forms.GetByOrg(ctx, acct.OrganizationID)
	if err != nil {
		h.Log.Error("orgadmin: load form", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if form == nil {
		httpjson.NotFound(w, "no application form configured")
		return
	}
	httpjson.OK(w, map[string]any{
		"form_id":   form.ID.Hex(),
		"title":     form.Title,
		"questions": questions,
	})
}

// HandleReplaceForm handles PUT /orgadmin/form. The new form replaces the old
// one whole; applicants mid-flight see either the complete old form or the
// complete new one.
func (h *Handler) HandleReplaceForm(w http.ResponseWriter, r *http.Request) {
	var req formRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	form, err := h.Forms.Replace(ctx, acct.OrganizationID, req.Title, req.Questions)
	if err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	if err := h.Accounts.SetHasCustomForm(ctx, acct.OrganizationID, true); err != nil {
		h.Log.Error("orgadmin: set has_custom_form", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"form_id": form.ID.Hex()})
}

// ServeApplications handles GET /orgadmin/applications: pending applications,
// oldest first.
func (h *Handler) ServeApplications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	apps, err := h.Apps.ListByOrg(ctx, acct.OrganizationID)
	if err != nil {
		h.Log.Error("orgadmin: list applications", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	httpjson.OK(w, map[string]any{"applications": apps})
}

// HandleApprove handles POST /orgadmin/applications/{id}/approve. Approval
// converts the application into a membership and removes the draft.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid application id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	m, err := h.Flow.Approve(ctx, appID, acct.OrganizationID)
	if err != nil {
		httpjson.NotFound(w, "application not found")
		return
	}
	httpjson.OK(w, map[string]any{"membership": m})
}

// HandleReject handles DELETE /orgadmin/applications/{id}. A rejection simply
// discards the draft; the applicant may re-apply while applications are open.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid application id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	app, err := h.Apps.GetByID(ctx, appID)
	if err != nil {
		h.Log.Error("orgadmin: get application", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if app == nil || app.OrganizationID != acct.OrganizationID {
		httpjson.NotFound(w, "application not found")
		return
	}
	if _, err := h.Apps.Delete(ctx, appID); err != nil {
		h.Log.Error("orgadmin: delete application", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}

type eventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
}

func (req eventRequest) input() eventstore.Input {
	return eventstore.Input{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
}

// ServeEvents handles GET /orgadmin/events.
func (h *Handler) ServeEvents(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	events, err := h.Events.ListByOrg(ctx, acct.OrganizationID)
	if err != nil {
		h.Log.Error("orgadmin: list events", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if events == nil {
		events = []models.OrgEvent{}
	}
	httpjson.OK(w, map[string]any{"events": events})
}

// HandleCreateEvent handles POST /orgadmin/events.
func (h *Handler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	event, err := h.Events.Create(ctx, acct.OrganizationID, req.input())
	if err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	httpjson.Created(w, event)
}

// eventForAccount loads an event and verifies it belongs to the admin's org.
func (h *Handler) eventForAccount(ctx context.Context, w http.ResponseWriter, r *http.Request, acct *models.OrgAccount) *models.OrgEvent {
	eventID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid event id")
		return nil
	}
	event, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		h.Log.Error("orgadmin: get event", zap.Error(err))
		httpjson.ServerError(w)
		return nil
	}
	if event == nil || event.OrganizationID != acct.OrganizationID {
		httpjson.NotFound(w, "event not found")
		return nil
	}
	return event
}

// HandleUpdateEvent handles PUT /orgadmin/events/{id}.
func (h *Handler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	event := h.eventForAccount(ctx, w, r, acct)
	if event == nil {
		return
	}
	if _, err := h.Events.Update(ctx, event.ID, req.input()); err != nil {
		httpjson.BadRequest(w, err.Error())
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}

// HandleDeleteEvent handles DELETE /orgadmin/events/{id}.
func (h *Handler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct := h.account(ctx, w, r)
	if acct == nil {
		return
	}
	event := h.eventForAccount(ctx, w, r, acct)
	if event == nil {
		return
	}
	if _, err := h.Events.Delete(ctx, event.ID); err != nil {
		h.Log.Error("orgadmin: delete event", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}
