// internal/domain/models/surveyquery.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SurveyQuery is the user's latest survey submission: a free-text interest
// statement plus structured demographics. Each submission replaces the prior
// one; no history is kept.
type SurveyQuery struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Query        string             `bson:"query" json:"query"`
	Demographics Demographics       `bson:"demographics" json:"demographics"`
	SubmittedAt  time.Time          `bson:"submitted_at" json:"submitted_at"`
}

// Demographics is the structured payload collected by the survey. Known
// fields are typed; Extra preserves survey answers this version of the
// backend does not model yet.
type Demographics struct {
	CareerFields    []string `bson:"career_fields,omitempty" json:"careerFields,omitempty"`
	Major           string   `bson:"major,omitempty" json:"major,omitempty"`
	Classification  string   `bson:"classification,omitempty" json:"classification,omitempty"`
	LivingSituation string   `bson:"living_situation,omitempty" json:"livingSituation,omitempty"`
	Activities      []string `bson:"activities,omitempty" json:"activities,omitempty"`
	Gender          string   `bson:"gender,omitempty" json:"gender,omitempty"`
	Race            string   `bson:"race,omitempty" json:"race,omitempty"`
	Religion        string   `bson:"religion,omitempty" json:"religion,omitempty"`
	Sexuality       string   `bson:"sexuality,omitempty" json:"sexuality,omitempty"`

	Extra map[string]any `bson:"extra,omitempty" json:"extra,omitempty"`
}
