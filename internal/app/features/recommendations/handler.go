// internal/app/features/recommendations/handler.go
package recommendations

import (
	"net/http"

	"github.com/dalemusser/campushub/internal/app/recommend"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"go.uber.org/zap"
)

// Handler serves survey-driven organization recommendations.
type Handler struct {
	Hub      *usercache.Hub
	Resolver *recommend.Resolver
	Log      *zap.Logger
}

func NewHandler(hub *usercache.Hub, resolver *recommend.Resolver, logger *zap.Logger) *Handler {
	return &Handler{Hub: hub, Resolver: resolver, Log: logger}
}

type recommendationsResponse struct {
	SurveyCompleted bool                  `json:"survey_completed"`
	Recommendations []recommend.Candidate `json:"recommendations"`
}

// ServeRecommendations handles GET /recommendations. Organizations the user
// has already joined or saved never appear; a missing survey yields an empty
// list rather than an error. The resolver owns the search-service timeout
// budget, so no request-scoped deadline is layered on top here.
func (h *Handler) ServeRecommendations(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	entry, err := h.Hub.Entry(r.Context(), uid)
	if err != nil {
		h.Log.Error("recommendations: load cache entry", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	sq := entry.Mirror.SurveyQuery()
	candidates := h.Resolver.Recommend(r.Context(), sq, recommend.Exclusions{
		IDs:   entry.Relationships.ExcludedIDs(),
		Names: entry.Relationships.ExcludedNames(),
	})
	if candidates == nil {
		candidates = []recommend.Candidate{}
	}

	httpjson.OK(w, recommendationsResponse{
		SurveyCompleted: sq != nil,
		Recommendations: candidates,
	})
}
