// internal/domain/models/orgevent.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrgEvent is an event published by an organization. Events map 1:1 onto
// Google Calendar events for users who connected their calendar;
// GoogleEventIDs records the per-user calendar event so updates and deletes
// stay in sync.
type OrgEvent struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Title          string             `bson:"title" json:"title"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Location       string             `bson:"location,omitempty" json:"location,omitempty"`
	StartsAt       time.Time          `bson:"starts_at" json:"starts_at"`
	EndsAt         time.Time          `bson:"ends_at" json:"ends_at"`

	// keyed by user ID hex
	GoogleEventIDs map[string]string `bson:"google_event_ids,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// CalendarToken stores a user's Google Calendar OAuth token. Refreshed
// tokens are persisted back so the stored row always holds the latest
// refresh credential.
type CalendarToken struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	AccessToken  string             `bson:"access_token" json:"-"`
	RefreshToken string             `bson:"refresh_token" json:"-"`
	TokenType    string             `bson:"token_type,omitempty" json:"-"`
	Expiry       time.Time          `bson:"expiry" json:"expiry"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
