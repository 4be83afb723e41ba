// internal/app/features/saved/handler.go
package saved

import (
	"context"
	"net/http"
	"strings"
	"time"

	organizationstore "github.com/dalemusser/campushub/internal/app/store/organizations"
	savedorgstore "github.com/dalemusser/campushub/internal/app/store/savedorgs"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/campushub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler manages saved-organization bookmarks. Saves may reference a catalog
// row or carry a free-text name for organizations not in the catalog yet.
type Handler struct {
	Saved *savedorgstore.Store
	Orgs  *organizationstore.Store
	Hub   *usercache.Hub
	Log   *zap.Logger
}

func NewHandler(saved *savedorgstore.Store, orgs *organizationstore.Store, hub *usercache.Hub, logger *zap.Logger) *Handler {
	return &Handler{Saved: saved, Orgs: orgs, Hub: hub, Log: logger}
}

type savedItem struct {
	ID                  string    `json:"id"`
	OrganizationID      string    `json:"organization_id,omitempty"`
	Name                string    `json:"name"`
	InCatalog           bool      `json:"in_catalog"`
	NotifyWhenAvailable bool      `json:"notify_when_available"`
	AutoJoined          bool      `json:"auto_joined"`
	CreatedAt           time.Time `json:"created_at"`
}

// ServeList handles GET /saved.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	saves, err := h.Saved.ListByUser(ctx, uid)
	if err != nil {
		h.Log.Error("saved: list", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	items := make([]savedItem, 0, len(saves))
	for _, s := range saves {
		items = append(items, toItem(s))
	}
	httpjson.OK(w, map[string]any{"saved": items})
}

func toItem(s models.SavedOrganization) savedItem {
	item := savedItem{
		ID:                  s.ID.Hex(),
		Name:                s.OrganizationName,
		NotifyWhenAvailable: s.NotifyWhenAvailable,
		AutoJoined:          s.AutoJoined,
		CreatedAt:           s.CreatedAt,
	}
	if s.OrganizationID != nil {
		item.OrganizationID = s.OrganizationID.Hex()
		item.InCatalog = true
	}
	return item
}

type saveRequest struct {
	OrganizationID      string `json:"organization_id"`
	Name                string `json:"name"`
	NotifyWhenAvailable bool   `json:"notify_when_available"`
}

// HandleSave handles POST /saved. A save with an organization_id is linked
// to that catalog row; a name-only save is linked automatically when the
// name matches a catalog row, and stays unlinked otherwise. Saving an
// organization the user already belongs to is rejected, because a membership
// supersedes a bookmark.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req saveRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	in := savedorgstore.SaveInput{
		Name:                strings.TrimSpace(req.Name),
		NotifyWhenAvailable: req.NotifyWhenAvailable,
	}

	switch {
	case req.OrganizationID != "":
		orgID, err := primitive.ObjectIDFromHex(req.OrganizationID)
		if err != nil {
			httpjson.BadRequest(w, "invalid organization id")
			return
		}
		org, err := h.Orgs.GetByID(ctx, orgID)
		if err == mongo.ErrNoDocuments {
			httpjson.NotFound(w, "organization not found")
			return
		}
		if err != nil {
			h.Log.Error("saved: get organization", zap.Error(err))
			httpjson.ServerError(w)
			return
		}
		in.OrganizationID = &org.ID
		in.Name = org.Name
	case in.Name != "":
		// Name-only save: link to the catalog row when one matches.
		org, err := h.Orgs.GetByName(ctx, in.Name)
		if err != nil {
			h.Log.Error("saved: lookup by name", zap.Error(err))
			httpjson.ServerError(w)
			return
		}
		if org != nil {
			in.OrganizationID = &org.ID
			in.Name = org.Name
		}
	default:
		httpjson.BadRequest(w, "organization_id or name is required")
		return
	}

	entry, err := h.Hub.Entry(ctx, uid)
	if err != nil {
		h.Log.Error("saved: load cache entry", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	alreadyMember := entry.Relationships.HasJoinedName(in.Name)
	if in.OrganizationID != nil {
		alreadyMember = alreadyMember || entry.Relationships.HasJoined(*in.OrganizationID)
	}
	if alreadyMember {
		httpjson.Error(w, http.StatusConflict, "you are already a member of this organization")
		return
	}

	rec, err := h.Saved.Save(ctx, uid, in)
	if err == savedorgstore.ErrDuplicateSave {
		httpjson.Error(w, http.StatusConflict, "this organization is already saved")
		return
	}
	if err != nil {
		h.Log.Error("saved: save", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.Created(w, toItem(rec))
}

// HandleDelete handles DELETE /saved/{id}. Deletes are scoped to the owning
// user, so a valid id belonging to someone else reads as not found.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	savedID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.BadRequest(w, "invalid saved id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Saved.Delete(ctx, uid, savedID)
	if err != nil {
		h.Log.Error("saved: delete", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if deleted == 0 {
		httpjson.NotFound(w, "saved organization not found")
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}
