// internal/app/features/calendar/handler.go
package calendar

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dalemusser/campushub/internal/app/gcal"
	caltokenstore "github.com/dalemusser/campushub/internal/app/store/caltokens"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// stateTTL bounds how long an OAuth consent round-trip may take.
const stateTTL = 10 * time.Minute

// Handler owns the Google Calendar connection lifecycle: the OAuth consent
// flow, connection status, on-demand sync, and disconnect.
type Handler struct {
	Tokens *caltokenstore.Store
	Syncer *gcal.Syncer
	OAuth  *oauth2.Config
	Log    *zap.Logger

	mu     sync.Mutex
	states map[string]stateEntry
}

type stateEntry struct {
	userID  primitive.ObjectID
	expires time.Time
}

func NewHandler(tokens *caltokenstore.Store, syncer *gcal.Syncer, oauth *oauth2.Config, logger *zap.Logger) *Handler {
	return &Handler{
		Tokens: tokens,
		Syncer: syncer,
		OAuth:  oauth,
		Log:    logger,
		states: map[string]stateEntry{},
	}
}

// issueState registers a one-time state value tied to the user.
func (h *Handler) issueState(userID primitive.ObjectID) string {
	state := uuid.NewString()
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	for s, e := range h.states {
		if now.After(e.expires) {
			delete(h.states, s)
		}
	}
	h.states[state] = stateEntry{userID: userID, expires: now.Add(stateTTL)}
	return state
}

// consumeState validates and removes a state value, returning the user it
// was issued to.
func (h *Handler) consumeState(state string) (primitive.ObjectID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.states[state]
	if !ok {
		return primitive.NilObjectID, false
	}
	delete(h.states, state)
	if time.Now().After(e.expires) {
		return primitive.NilObjectID, false
	}
	return e.userID, true
}

// HandleConnect handles GET /calendar/connect: returns the Google consent
// URL. AccessTypeOffline with forced consent is required to receive a
// refresh token on every connect, not only the first.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}
	state := h.issueState(uid)
	url := h.OAuth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	httpjson.OK(w, map[string]any{"auth_url": url})
}

// HandleCallback handles GET /calendar/callback: the OAuth redirect target.
// The state parameter carries the user identity, so this endpoint works
// without a bearer token.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		httpjson.BadRequest(w, "missing state or code")
		return
	}
	uid, ok := h.consumeState(state)
	if !ok {
		httpjson.BadRequest(w, "unknown or expired state")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	tok, err := h.OAuth.Exchange(ctx, code)
	if err != nil {
		h.Log.Warn("calendar: code exchange failed", zap.Error(err))
		httpjson.BadRequest(w, "authorization code exchange failed")
		return
	}
	if _, err := h.Tokens.Upsert(ctx, uid, tok); err != nil {
		h.Log.Error("calendar: store token", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"connected": true})
}

// ServeStatus handles GET /calendar: whether the user has a grant on file.
func (h *Handler) ServeStatus(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tok, err := h.Tokens.GetByUser(ctx, uid)
	if err != nil {
		h.Log.Error("calendar: get token", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"connected": tok != nil})
}

// HandleSync handles POST /calendar/sync: pushes upcoming events of the
// user's joined organizations to their calendar immediately, without waiting
// for the background sweep.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	n, err := h.Syncer.SyncUser(ctx, uid)
	if err == gcal.ErrNotConnected {
		httpjson.Error(w, http.StatusConflict, "google calendar is not connected")
		return
	}
	if err != nil {
		h.Log.Error("calendar: sync", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	httpjson.OK(w, map[string]any{"created": n})
}

// HandleDisconnect handles DELETE /calendar.
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	deleted, err := h.Tokens.Delete(ctx, uid)
	if err != nil {
		h.Log.Error("calendar: disconnect", zap.Error(err))
		httpjson.ServerError(w)
		return
	}
	if deleted == 0 {
		httpjson.NotFound(w, "google calendar is not connected")
		return
	}
	httpjson.OK(w, map[string]any{"success": true})
}
