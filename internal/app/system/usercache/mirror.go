// internal/app/system/usercache/mirror.go
package usercache

import (
	"context"
	"sync"

	"github.com/dalemusser/campushub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileFetcher loads the single profile and survey-query rows for a user.
// Implementations return (nil, nil) when no row exists: a user with no
// profile yet is a valid, common state.
type ProfileFetcher interface {
	Profile(ctx context.Context, userID primitive.ObjectID) (*models.UserProfile, error)
	SurveyQuery(ctx context.Context, userID primitive.ObjectID) (*models.SurveyQuery, error)
}

// ProfileMirror mirrors the most-recent profile row and survey-query row for
// one user. Same refresh/clear pattern as RelationshipCache, but cardinality
// is one row per user rather than a set.
type ProfileMirror struct {
	userID  primitive.ObjectID
	fetcher ProfileFetcher

	mu    sync.RWMutex
	epoch uint64

	profile *models.UserProfile
	query   *models.SurveyQuery
}

// NewProfileMirror creates an empty mirror for the user.
func NewProfileMirror(userID primitive.ObjectID, fetcher ProfileFetcher) *ProfileMirror {
	return &ProfileMirror{userID: userID, fetcher: fetcher}
}

// RefreshProfile re-fetches the profile row; nil means no profile yet.
func (m *ProfileMirror) RefreshProfile(ctx context.Context) error {
	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	p, err := m.fetcher.Profile(ctx, m.userID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return nil
	}
	m.profile = p
	return nil
}

// RefreshQuery re-fetches the latest survey query; nil means the user has
// not taken the survey.
func (m *ProfileMirror) RefreshQuery(ctx context.Context) error {
	m.mu.RLock()
	epoch := m.epoch
	m.mu.RUnlock()

	q, err := m.fetcher.SurveyQuery(ctx, m.userID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return nil
	}
	m.query = q
	return nil
}

// Clear drops the mirrored rows and invalidates in-flight refreshes.
func (m *ProfileMirror) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.epoch++
	m.profile = nil
	m.query = nil
}

// Profile returns the mirrored profile row, or nil if the user has none.
func (m *ProfileMirror) Profile() *models.UserProfile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile
}

// SurveyQuery returns the mirrored survey row, or nil if the user has not
// taken the survey.
func (m *ProfileMirror) SurveyQuery() *models.SurveyQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.query
}
