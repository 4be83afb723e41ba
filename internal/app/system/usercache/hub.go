// internal/app/system/usercache/hub.go
package usercache

import (
	"context"
	"sync"

	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/feed"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Collections whose change feeds drive cache invalidation.
const (
	collJoined   = "user_joined_organizations"
	collSaved    = "saved_organizations"
	collProfiles = "user_profiles"
	collQueries  = "user_queries"
)

// Fetcher loads ground truth for both cache kinds.
type Fetcher interface {
	RelationshipFetcher
	ProfileFetcher
}

// Entry bundles the two per-user projections. An entry is usable only after
// its first successful warm; until then Hub.Entry retries the warm instead of
// handing out empty projections.
type Entry struct {
	Relationships *RelationshipCache
	Mirror        *ProfileMirror

	warmMu sync.Mutex
	warmed bool
}

// Hub owns one Entry per signed-in user and keeps every entry converged with
// the backing store through change-feed subscriptions. All request handlers
// read the same entry for a user, which is what keeps concurrently open
// views consistent without per-view queries.
//
// Hub implements auth.Listener: entries are created on sign-in and cleared
// synchronously on sign-out so no stale cross-user state survives a session.
type Hub struct {
	fetcher Fetcher
	feed    feed.Feed
	log     *zap.Logger

	mu      sync.RWMutex
	entries map[primitive.ObjectID]*Entry
	subs    []feed.Subscription
}

// NewHub creates a Hub. Call Start to begin feed-driven invalidation.
func NewHub(fetcher Fetcher, f feed.Feed, logger *zap.Logger) *Hub {
	return &Hub{
		fetcher: fetcher,
		feed:    f,
		log:     logger,
		entries: map[primitive.ObjectID]*Entry{},
	}
}

// Start subscribes to the change feeds backing all cached projections.
func (h *Hub) Start() error {
	type target struct {
		collection string
		apply      func(*Entry, context.Context) error
	}
	targets := []target{
		{collJoined, func(e *Entry, ctx context.Context) error { return e.Relationships.RefreshJoined(ctx) }},
		{collSaved, func(e *Entry, ctx context.Context) error { return e.Relationships.RefreshSaved(ctx) }},
		{collProfiles, func(e *Entry, ctx context.Context) error { return e.Mirror.RefreshProfile(ctx) }},
		{collQueries, func(e *Entry, ctx context.Context) error { return e.Mirror.RefreshQuery(ctx) }},
	}

	for _, tgt := range targets {
		apply := tgt.apply
		sub, err := h.feed.Subscribe(tgt.collection, func(ev feed.Event) {
			h.onEvent(ev, apply)
		})
		if err != nil {
			h.Stop()
			return err
		}
		h.mu.Lock()
		h.subs = append(h.subs, sub)
		h.mu.Unlock()
	}
	return nil
}

// Stop tears down all feed subscriptions. Entries remain readable but are no
// longer kept fresh; intended for shutdown only.
func (h *Hub) Stop() {
	h.mu.Lock()
	subs := h.subs
	h.subs = nil
	h.mu.Unlock()
	for _, s := range subs {
		s.Stop()
	}
}

// onEvent applies one change event: a user-scoped event refreshes that
// user's entry; an event with no user (deletes carry no document) refreshes
// every active entry, because any of them may be affected. Any event type
// triggers a full re-fetch; the event payload is never patched in.
func (h *Hub) onEvent(ev feed.Event, apply func(*Entry, context.Context) error) {
	if !ev.UserID.IsZero() {
		h.mu.RLock()
		e, ok := h.entries[ev.UserID]
		h.mu.RUnlock()
		if !ok {
			return
		}
		go h.refresh(e, ev.Collection, apply)
		return
	}

	h.mu.RLock()
	entries := make([]*Entry, 0, len(h.entries))
	for _, e := range h.entries {
		entries = append(entries, e)
	}
	h.mu.RUnlock()
	for _, e := range entries {
		go h.refresh(e, ev.Collection, apply)
	}
}

func (h *Hub) refresh(e *Entry, collection string, apply func(*Entry, context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if err := apply(e, ctx); err != nil {
		// Degrade to last known good state; the next event retries.
		h.log.Warn("cache refresh failed",
			zap.String("collection", collection),
			zap.Error(err))
	}
}

// Entry returns the cache entry for the user, creating and warming one if
// needed (covers valid tokens that outlive a server restart).
func (h *Hub) Entry(ctx context.Context, userID primitive.ObjectID) (*Entry, error) {
	h.mu.RLock()
	e, ok := h.entries[userID]
	h.mu.RUnlock()
	if !ok {
		h.mu.Lock()
		if e, ok = h.entries[userID]; !ok {
			e = &Entry{
				Relationships: NewRelationshipCache(userID, h.fetcher),
				Mirror:        NewProfileMirror(userID, h.fetcher),
			}
			h.entries[userID] = e
		}
		h.mu.Unlock()
	}

	if err := h.ensureWarm(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ensureWarm runs the initial warm once per entry, retrying on later calls
// after a failure. The entry is registered before warming so feed events
// arriving mid-warm are not lost, but it is never handed out cold.
func (h *Hub) ensureWarm(ctx context.Context, e *Entry) error {
	e.warmMu.Lock()
	defer e.warmMu.Unlock()
	if e.warmed {
		return nil
	}
	if err := h.warm(ctx, e); err != nil {
		return err
	}
	e.warmed = true
	return nil
}

func (h *Hub) warm(ctx context.Context, e *Entry) error {
	if err := e.Relationships.RefreshJoined(ctx); err != nil {
		return err
	}
	if err := e.Relationships.RefreshSaved(ctx); err != nil {
		return err
	}
	if err := e.Mirror.RefreshProfile(ctx); err != nil {
		return err
	}
	return e.Mirror.RefreshQuery(ctx)
}

// Drop clears and removes the user's entry.
func (h *Hub) Drop(userID primitive.ObjectID) {
	h.mu.Lock()
	e, ok := h.entries[userID]
	delete(h.entries, userID)
	h.mu.Unlock()
	if ok {
		e.Relationships.Clear()
		e.Mirror.Clear()
	}
}

// OnSignIn warms the user's entry in the background; the first request that
// needs it will warm it synchronously if this has not finished yet.
func (h *Hub) OnSignIn(u *auth.SessionUser) {
	uid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
		defer cancel()
		if _, err := h.Entry(ctx, uid); err != nil {
			h.log.Warn("cache warm on sign-in failed",
				zap.String("user_id", u.ID),
				zap.Error(err))
		}
	}()
}

// OnSignOut clears the user's cached state synchronously, before the
// sign-out response is written.
func (h *Hub) OnSignOut(userID string) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return
	}
	h.Drop(uid)
}
