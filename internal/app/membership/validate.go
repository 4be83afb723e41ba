package membership

import (
	"fmt"
	"strings"

	"github.com/dalemusser/campushub/internal/domain/models"
)

// validateResponses checks a submission against the organization's form:
// every required question answered, answer types matching question types,
// word limits respected, and multiple-choice selections drawn from the
// question's options. Responses to unknown questions are rejected outright.
func validateResponses(questions []models.FormQuestion, responses []models.QuestionResponse) error {
	byID := make(map[string]models.FormQuestion, len(questions))
	for _, q := range questions {
		byID[q.ID.Hex()] = q
	}

	answered := make(map[string]bool, len(responses))
	for _, r := range responses {
		q, ok := byID[r.QuestionID]
		if !ok {
			return fmt.Errorf("response references unknown question %q", r.QuestionID)
		}
		if answered[r.QuestionID] {
			return fmt.Errorf("duplicate response for question %q", q.Prompt)
		}
		answered[r.QuestionID] = true

		if r.Type != q.Type {
			return fmt.Errorf("question %q expects a %s response, got %s", q.Prompt, q.Type, r.Type)
		}

		switch q.Type {
		case models.QuestionShortText, models.QuestionLongText:
			if q.WordLimit > 0 {
				if n := len(strings.Fields(r.Text)); n > q.WordLimit {
					return fmt.Errorf("answer to %q is %d words, limit is %d", q.Prompt, n, q.WordLimit)
				}
			}
			if q.Required && strings.TrimSpace(r.Text) == "" {
				return fmt.Errorf("question %q requires an answer", q.Prompt)
			}
		case models.QuestionMultipleChoice:
			if q.Required && len(r.Selections) == 0 {
				return fmt.Errorf("question %q requires a selection", q.Prompt)
			}
			for _, sel := range r.Selections {
				if !containsOption(q.Options, sel) {
					return fmt.Errorf("selection %q is not an option for %q", sel, q.Prompt)
				}
			}
		default:
			return fmt.Errorf("question %q has unsupported type %q", q.Prompt, q.Type)
		}
	}

	for _, q := range questions {
		if q.Required && !answered[q.ID.Hex()] {
			return fmt.Errorf("question %q requires an answer", q.Prompt)
		}
	}
	return nil
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
