// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	profilestore "github.com/dalemusser/campushub/internal/app/store/profiles"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxPictureBytes caps profile picture uploads.
const maxPictureBytes = 5 << 20 // 5 MiB

// Handler serves the signed-in user's profile and picture.
type Handler struct {
	Profiles *profilestore.Store
	Hub      *usercache.Hub
	Storage  storage.Store
	Log      *zap.Logger
}

func NewHandler(profiles *profilestore.Store, hub *usercache.Hub, store storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Profiles: profiles, Hub: hub, Storage: store, Log: logger}
}

type profileResponse struct {
	DisplayName          string `json:"display_name"`
	HasPicture           bool   `json:"has_picture"`
	EmailMarketing       bool   `json:"email_marketing"`
	EmailUpdates         bool   `json:"email_updates"`
	EmailRecommendations bool   `json:"email_recommendations"`
}

// ServeProfile handles GET /profile. The profile is read from the per-user
// mirror; a user who never saved a profile gets the zero-value shape.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	entry, err := h.Hub.Entry(r.Context(), uid)
	if err != nil {
		h.Log.Error("profile: load cache entry", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	resp := profileResponse{}
	if p := entry.Mirror.Profile(); p != nil {
		resp = profileResponse{
			DisplayName:          p.DisplayName,
			HasPicture:           p.PicturePath != "",
			EmailMarketing:       p.EmailMarketing,
			EmailUpdates:         p.EmailUpdates,
			EmailRecommendations: p.EmailRecommendations,
		}
	}
	httpjson.OK(w, resp)
}

type updateProfileRequest struct {
	DisplayName          string `json:"display_name"`
	EmailMarketing       bool   `json:"email_marketing"`
	EmailUpdates         bool   `json:"email_updates"`
	EmailRecommendations bool   `json:"email_recommendations"`
}

// HandleUpdate handles PUT /profile.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.Upsert(ctx, uid, profilestore.UpsertInput{
		DisplayName:          req.DisplayName,
		EmailMarketing:       req.EmailMarketing,
		EmailUpdates:         req.EmailUpdates,
		EmailRecommendations: req.EmailRecommendations,
	})
	if err != nil {
		h.Log.Error("profile: upsert", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.OK(w, profileResponse{
		DisplayName:          p.DisplayName,
		HasPicture:           p.PicturePath != "",
		EmailMarketing:       p.EmailMarketing,
		EmailUpdates:         p.EmailUpdates,
		EmailRecommendations: p.EmailRecommendations,
	})
}

// HandleUploadPicture handles POST /profile/picture (multipart form, field
// "picture").
func (h *Handler) HandleUploadPicture(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBytes)
	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		httpjson.BadRequest(w, "picture upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		httpjson.BadRequest(w, "missing picture file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		httpjson.BadRequest(w, "picture must be a JPEG, PNG, GIF, or WebP image")
		return
	}

	ext := filepath.Ext(header.Filename)
	path := filepath.ToSlash(filepath.Join(
		"profile-pictures",
		time.Now().UTC().Format("2006/01"),
		fmt.Sprintf("%s-%s%s", uid.Hex(), uuid.New().String()[:8], ext),
	))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Storage.Put(ctx, path, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.Log.Error("profile: store picture", zap.Error(err), zap.String("path", path))
		httpjson.ServerError(w)
		return
	}
	if err := h.Profiles.SetPicturePath(ctx, uid, path); err != nil {
		h.Log.Error("profile: record picture path", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.OK(w, map[string]any{"success": true, "path": path})
}

// ServePicture handles GET /profile/picture: serves the file directly from
// local storage, or redirects to a signed URL for remote backends.
func (h *Handler) ServePicture(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Profiles.GetByUser(ctx, uid)
	if err != nil {
		h.Log.Error("profile: load for picture", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if p == nil || p.PicturePath == "" {
		httpjson.NotFound(w, "no profile picture")
		return
	}

	if local, ok := h.Storage.(*storage.Local); ok {
		fullPath, err := local.GetFullPath(p.PicturePath)
		if err != nil {
			h.Log.Error("profile: locate picture", zap.Error(err), zap.String("path", p.PicturePath))
			httpjson.ServerError(w)
			return
		}
		http.ServeFile(w, r, fullPath)
		return
	}

	signedURL, err := h.Storage.PresignedURL(ctx, p.PicturePath, &storage.PresignOptions{
		Expires: 15 * time.Minute,
	})
	if err != nil {
		h.Log.Error("profile: sign picture URL", zap.Error(err), zap.String("path", p.PicturePath))
		httpjson.ServerError(w)
		return
	}
	http.Redirect(w, r, signedURL, http.StatusSeeOther)
}
