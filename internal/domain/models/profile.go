// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserProfile is the single optional profile row per user. It is created
// lazily on the user's first profile save; its absence is a normal state.
type UserProfile struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	DisplayName string             `bson:"display_name" json:"display_name"`
	PicturePath string             `bson:"picture_path,omitempty" json:"picture_path,omitempty"`

	// Email preference flags.
	EmailMarketing       bool `bson:"email_marketing" json:"email_marketing"`
	EmailUpdates         bool `bson:"email_updates" json:"email_updates"`
	EmailRecommendations bool `bson:"email_recommendations" json:"email_recommendations"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
