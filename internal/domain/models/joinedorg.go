// internal/domain/models/joinedorg.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership roles.
const (
	MembershipRoleMember  = "member"
	MembershipRoleOfficer = "officer"
	MembershipRoleAdmin   = "admin"
)

// JoinedOrganization links a user to an organization they are a member of.
// Created by a direct join or by application approval. Memberships are the
// canonical exclusion set for recommendations: a joined org is never
// recommended and never simultaneously saved.
type JoinedOrganization struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Role           string             `bson:"role" json:"role"` // member | officer | admin
	Title          string             `bson:"title,omitempty" json:"title,omitempty"`
	JoinedAt       time.Time          `bson:"joined_at" json:"joined_at"`
}
