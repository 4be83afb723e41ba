// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an authenticated identity: students browsing and joining
// organizations, and org admins managing them.
//
// NOTE:
//   - Profile data (display name, picture, email preferences) is not embedded
//     here. Use the user_profiles collection; a user has no profile row until
//     their first profile save.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email         string             `bson:"email" json:"email"`
	EmailCI       string             `bson:"email_ci" json:"-"` // lowercase, trimmed
	PasswordHash  string             `bson:"password_hash" json:"-"`
	Role          string             `bson:"role" json:"role"` // student | orgadmin
	EmailVerified bool               `bson:"email_verified" json:"email_verified"`
	Status        string             `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
