// Package recommend turns a student's survey submission into a ranked list
// of organization suggestions. Scoring is pluggable: the default wiring asks
// a remote search service first and falls back to a local scoring script when
// the service is unreachable or returns nothing.
package recommend

import (
	"context"

	"github.com/dalemusser/campushub/internal/domain/models"
)

// Candidate is one scored organization suggestion. ID is the catalog
// organization's hex ID when the scorer could link the suggestion to the
// catalog; otherwise it is empty and the name alone identifies the match.
type Candidate struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Bio   string  `json:"bio,omitempty"`
	Score float64 `json:"score,omitempty"`
}

// Request carries the free-text query and the demographic profile that a
// scorer weighs alongside it.
type Request struct {
	Query    string         `json:"query"`
	UserData map[string]any `json:"userData"`
}

// Scorer produces ranked candidates for a request. Order is meaningful:
// callers preserve it and never re-rank.
type Scorer interface {
	Score(ctx context.Context, req Request) ([]Candidate, error)
}

// BuildRequest flattens a survey submission into the request shape scorers
// consume.
func BuildRequest(sq *models.SurveyQuery) Request {
	userData := map[string]any{
		"careerFields":    sq.Demographics.CareerFields,
		"major":           sq.Demographics.Major,
		"classification":  sq.Demographics.Classification,
		"livingSituation": sq.Demographics.LivingSituation,
		"activities":      sq.Demographics.Activities,
		"gender":          sq.Demographics.Gender,
		"race":            sq.Demographics.Race,
		"religion":        sq.Demographics.Religion,
		"sexuality":       sq.Demographics.Sexuality,
	}
	for k, v := range sq.Demographics.Extra {
		userData[k] = v
	}
	return Request{Query: sq.Query, UserData: userData}
}
