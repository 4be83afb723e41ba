// internal/app/system/feed/feed.go

// Package feed provides the change-feed primitive: a push stream of
// row-level insert/update/delete events per collection, used to keep
// per-user caches fresh without polling.
//
// Delivery is at-least-once and is not ordered relative to the local write
// that caused an event. Consumers must treat every event as an invalidation
// signal and re-derive ground truth (see usercache), never patch
// incrementally.
package feed

import "go.mongodb.org/mongo-driver/bson/primitive"

// EventType classifies a change event.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Event is one row-level change.
//
// UserID is the owning user when the event carries a full document with a
// user_id field. Delete events carry no document, so UserID is Nil for them;
// consumers that scope state per user must treat a Nil UserID as "any user
// may be affected".
type Event struct {
	Type       EventType
	Collection string
	DocumentID primitive.ObjectID
	UserID     primitive.ObjectID
}

// Handler receives change events. Handlers run on the subscription's
// goroutine and should hand off anything slow.
type Handler func(Event)

// Subscription is a handle on an active change-feed subscription.
// Stop tears the subscription down deterministically and is idempotent.
type Subscription interface {
	Stop()
}

// Feed is the subscription primitive. The production implementation watches
// Mongo change streams; tests substitute an in-memory fake.
type Feed interface {
	Subscribe(collection string, fn Handler) (Subscription, error)
}
