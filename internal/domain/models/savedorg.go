// internal/domain/models/savedorg.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedOrganization is a user's bookmark of an organization.
//
// A save is "linked" when OrganizationID references a catalog org, or
// "unlinked" when only OrganizationName is set because the org is not in the
// catalog yet. OrganizationNameCI is always stored (lowercase, trimmed) so
// unlinked saves can be matched against recommendation candidates by name.
type SavedOrganization struct {
	ID                 primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID             primitive.ObjectID  `bson:"user_id" json:"user_id"`
	OrganizationID     *primitive.ObjectID `bson:"organization_id,omitempty" json:"organization_id,omitempty"`
	OrganizationName   string              `bson:"organization_name" json:"organization_name"`
	OrganizationNameCI string              `bson:"organization_name_ci" json:"-"`

	NotifyWhenAvailable bool `bson:"notify_when_available" json:"notify_when_available"`
	AutoJoined          bool `bson:"auto_joined" json:"auto_joined"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
