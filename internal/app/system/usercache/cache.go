// internal/app/system/usercache/cache.go

// Package usercache maintains per-user read-side projections of the backing
// store: the relationship cache (joined/saved organization sets) and the
// profile/survey mirror. Writes never touch these caches directly; they go
// through the store, and the resulting change-feed events re-derive the
// cached state here (invalidate-then-reload). Staleness is bounded only by
// feed delivery latency.
package usercache

import (
	"context"
	"sync"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrgRef identifies a joined organization: always linked to a catalog row.
type OrgRef struct {
	ID   primitive.ObjectID
	Name string
}

// SavedRef identifies a saved organization. ID is nil for unlinked saves
// that only carry a free-text name.
type SavedRef struct {
	ID   *primitive.ObjectID
	Name string
}

// RelationshipFetcher loads the full relationship sets for a user. A user
// with no rows is a valid empty state, not an error.
type RelationshipFetcher interface {
	JoinedOrganizations(ctx context.Context, userID primitive.ObjectID) ([]OrgRef, error)
	SavedOrganizations(ctx context.Context, userID primitive.ObjectID) ([]SavedRef, error)
}

// RelationshipCache holds the current user's derived relationship sets:
// joined-organization IDs and names, saved-organization IDs and names
// (names normalized for comparison). Every refresh replaces a whole set;
// concurrent refreshes are resolved last-writer-wins, which is safe because
// each fetch retrieves the complete set rather than a delta.
type RelationshipCache struct {
	userID  primitive.ObjectID
	fetcher RelationshipFetcher

	mu    sync.RWMutex
	epoch uint64 // bumped by Clear; in-flight refreshes from an older epoch are discarded

	joinedIDs   map[primitive.ObjectID]struct{}
	joinedNames map[string]struct{}
	savedIDs    map[primitive.ObjectID]struct{}
	savedNames  map[string]struct{}
}

// NewRelationshipCache creates an empty cache for the user.
func NewRelationshipCache(userID primitive.ObjectID, fetcher RelationshipFetcher) *RelationshipCache {
	c := &RelationshipCache{userID: userID, fetcher: fetcher}
	c.resetLocked()
	return c
}

func (c *RelationshipCache) resetLocked() {
	c.joinedIDs = map[primitive.ObjectID]struct{}{}
	c.joinedNames = map[string]struct{}{}
	c.savedIDs = map[primitive.ObjectID]struct{}{}
	c.savedNames = map[string]struct{}{}
}

// RefreshJoined re-fetches the joined set. Idempotent and safe to call
// concurrently with itself, RefreshSaved, and Clear.
func (c *RelationshipCache) RefreshJoined(ctx context.Context) error {
	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	refs, err := c.fetcher.JoinedOrganizations(ctx, c.userID)
	if err != nil {
		return err
	}

	ids := make(map[primitive.ObjectID]struct{}, len(refs))
	names := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		ids[ref.ID] = struct{}{}
		if n := normalize.OrgName(ref.Name); n != "" {
			names[n] = struct{}{}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		// Cleared (sign-out or identity change) while fetching; the result
		// belongs to a dead session and must not resurrect.
		return nil
	}
	c.joinedIDs = ids
	c.joinedNames = names
	return nil
}

// RefreshSaved re-fetches the saved set. Same semantics as RefreshJoined.
func (c *RelationshipCache) RefreshSaved(ctx context.Context) error {
	c.mu.RLock()
	epoch := c.epoch
	c.mu.RUnlock()

	refs, err := c.fetcher.SavedOrganizations(ctx, c.userID)
	if err != nil {
		return err
	}

	ids := make(map[primitive.ObjectID]struct{}, len(refs))
	names := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if ref.ID != nil {
			ids[*ref.ID] = struct{}{}
		}
		if n := normalize.OrgName(ref.Name); n != "" {
			names[n] = struct{}{}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil
	}
	c.savedIDs = ids
	c.savedNames = names
	return nil
}

// Clear empties all sets immediately and invalidates in-flight refreshes.
func (c *RelationshipCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.resetLocked()
}

// HasJoined reports whether the user is a member of the organization.
func (c *RelationshipCache) HasJoined(orgID primitive.ObjectID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.joinedIDs[orgID]
	return ok
}

// HasJoinedName reports whether the user is a member of an organization with
// the given name, compared in normalized form.
func (c *RelationshipCache) HasJoinedName(name string) bool {
	n := normalize.OrgName(name)
	if n == "" {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.joinedNames[n]
	return ok
}

// HasSaved reports whether the user has a linked save for the organization.
func (c *RelationshipCache) HasSaved(orgID primitive.ObjectID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.savedIDs[orgID]
	return ok
}

// JoinedIDs returns a copy of the joined-organization ID set.
func (c *RelationshipCache) JoinedIDs() []primitive.ObjectID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]primitive.ObjectID, 0, len(c.joinedIDs))
	for id := range c.joinedIDs {
		out = append(out, id)
	}
	return out
}

// SavedIDs returns a copy of the linked saved-organization ID set.
func (c *RelationshipCache) SavedIDs() []primitive.ObjectID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]primitive.ObjectID, 0, len(c.savedIDs))
	for id := range c.savedIDs {
		out = append(out, id)
	}
	return out
}

// ExcludedIDs returns the union of joined and saved organization IDs, keyed
// by hex, for recommendation filtering.
func (c *RelationshipCache) ExcludedIDs() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]struct{}, len(c.joinedIDs)+len(c.savedIDs))
	for id := range c.joinedIDs {
		out[id.Hex()] = struct{}{}
	}
	for id := range c.savedIDs {
		out[id.Hex()] = struct{}{}
	}
	return out
}

// ExcludedNames returns the union of joined and saved organization names in
// normalized form, so name-only saves still exclude candidates.
func (c *RelationshipCache) ExcludedNames() map[string]struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]struct{}, len(c.joinedNames)+len(c.savedNames))
	for n := range c.joinedNames {
		out[n] = struct{}{}
	}
	for n := range c.savedNames {
		out[n] = struct{}{}
	}
	return out
}
