package recommend

import (
	"context"

	"github.com/dalemusser/campushub/internal/app/system/normalize"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.uber.org/zap"
)

// Exclusions names the organizations a user already has a relationship with.
// IDs holds catalog hex IDs; Names holds normalized organization names, which
// also covers saved entries that never linked to a catalog row.
type Exclusions struct {
	IDs   map[string]struct{}
	Names map[string]struct{}
}

// Resolver produces a user's recommendation list. It tries the primary
// scorer, falls back to the secondary when the primary errors or returns
// nothing, and filters out excluded organizations while preserving scorer
// order. All failures degrade to an empty list; recommendations are a
// best-effort surface and never fail a request.
type Resolver struct {
	primary  Scorer
	fallback Scorer
	log      *zap.Logger
}

func NewResolver(primary, fallback Scorer, log *zap.Logger) *Resolver {
	return &Resolver{primary: primary, fallback: fallback, log: log}
}

// Recommend resolves suggestions for the given survey submission. A nil
// submission (the user never completed the survey) yields an empty list.
func (r *Resolver) Recommend(ctx context.Context, sq *models.SurveyQuery, excl Exclusions) []Candidate {
	if sq == nil || sq.Query == "" {
		return nil
	}
	req := BuildRequest(sq)

	results, err := r.primary.Score(ctx, req)
	if err != nil || len(results) == 0 {
		if err != nil {
			r.log.Warn("primary scorer failed, falling back", zap.Error(err))
		}
		if r.fallback == nil {
			return nil
		}
		results, err = r.fallback.Score(ctx, req)
		if err != nil {
			r.log.Warn("fallback scorer failed", zap.Error(err))
			return nil
		}
	}
	return filter(results, excl)
}

// filter drops candidates the user already joined or saved, matching linked
// entries by ID and unlinked ones by normalized name. Scorer order is kept.
func filter(results []Candidate, excl Exclusions) []Candidate {
	if len(excl.IDs) == 0 && len(excl.Names) == 0 {
		return results
	}
	kept := make([]Candidate, 0, len(results))
	for _, c := range results {
		if c.ID != "" {
			if _, ok := excl.IDs[c.ID]; ok {
				continue
			}
		}
		if _, ok := excl.Names[normalize.OrgName(c.Name)]; ok {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}
