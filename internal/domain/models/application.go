// internal/domain/models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Application statuses.
const (
	ApplicationPending = "pending"
)

// Application is a pending request to join an application-based
// organization. It is written in a single insert (never partially) and is
// removed when approved, at which point a JoinedOrganization row is created.
type Application struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrganizationID primitive.ObjectID `bson:"organization_id" json:"organization_id"`

	ApplicantName  string `bson:"applicant_name" json:"applicant_name"`
	ApplicantEmail string `bson:"applicant_email" json:"applicant_email"`
	Justification  string `bson:"justification,omitempty" json:"justification,omitempty"`

	// Responses to the org's custom form, if one exists. Empty when the org
	// uses the default single justification field.
	Responses []QuestionResponse `bson:"responses,omitempty" json:"responses,omitempty"`

	Status      string    `bson:"status" json:"status"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
}

// QuestionResponse is one answer in an application. QuestionID is the form
// question's hex ID as submitted by the client. Type mirrors the question
// type; the union is tagged rather than a bare any so known shapes stay typed
// while Extra keeps room for shapes added later.
type QuestionResponse struct {
	QuestionID string `bson:"question_id" json:"question_id"`
	Type       string `bson:"type" json:"type"`

	Text       string         `bson:"text,omitempty" json:"text,omitempty"`
	Selections []string       `bson:"selections,omitempty" json:"selections,omitempty"`
	Extra      map[string]any `bson:"extra,omitempty" json:"extra,omitempty"`
}
