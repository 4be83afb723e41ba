// internal/domain/models/form.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Form question types.
const (
	QuestionShortText      = "short_text"
	QuestionLongText       = "long_text"
	QuestionMultipleChoice = "multiple_choice"
)

// OrgForm is the custom application form owned by an organization. Questions
// live in the form_questions collection, ordered by Position.
type OrgForm struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`
	Title          string             `bson:"title,omitempty" json:"title,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// FormQuestion is one question in an org's application form.
//
// Type determines which settings apply:
//   - short_text: no settings
//   - long_text: WordLimit (0 means unlimited)
//   - multiple_choice: Options (at least two)
type FormQuestion struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FormID   primitive.ObjectID `bson:"form_id" json:"form_id"`
	Position int                `bson:"position" json:"position"`
	Prompt   string             `bson:"prompt" json:"prompt"`
	Type     string             `bson:"type" json:"type"`
	Required bool               `bson:"required" json:"required"`

	WordLimit int      `bson:"word_limit,omitempty" json:"word_limit,omitempty"`
	Options   []string `bson:"options,omitempty" json:"options,omitempty"`
}
