// internal/app/features/survey/handler.go
package survey

import (
	"context"
	"net/http"
	"strings"

	surveystore "github.com/dalemusser/campushub/internal/app/store/surveys"
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/dalemusser/campushub/internal/app/system/httpjson"
	"github.com/dalemusser/campushub/internal/app/system/timeouts"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/campushub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the interest survey. Each submission replaces the previous
// one: recommendations always reflect the latest answers.
type Handler struct {
	Surveys *surveystore.Store
	Hub     *usercache.Hub
	Log     *zap.Logger
}

func NewHandler(surveys *surveystore.Store, hub *usercache.Hub, logger *zap.Logger) *Handler {
	return &Handler{Surveys: surveys, Hub: hub, Log: logger}
}

type surveyResponse struct {
	Completed    bool                `json:"completed"`
	Query        string              `json:"query,omitempty"`
	Demographics *models.Demographics `json:"demographics,omitempty"`
}

// ServeLatest handles GET /survey: the user's current submission from the
// per-user mirror, or {"completed": false}.
func (h *Handler) ServeLatest(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	entry, err := h.Hub.Entry(r.Context(), uid)
	if err != nil {
		h.Log.Error("survey: load cache entry", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	q := entry.Mirror.SurveyQuery()
	if q == nil {
		httpjson.OK(w, surveyResponse{Completed: false})
		return
	}
	httpjson.OK(w, surveyResponse{
		Completed:    true,
		Query:        q.Query,
		Demographics: &q.Demographics,
	})
}

type submitRequest struct {
	Query        string              `json:"query"`
	Demographics models.Demographics `json:"demographics"`
}

// HandleSubmit handles POST /survey. Latest submission wins.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.CurrentUserID(r)
	if !ok {
		httpjson.Unauthorized(w)
		return
	}

	var req submitRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.BadRequest(w, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		httpjson.BadRequest(w, "survey query is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	q, err := h.Surveys.Upsert(ctx, uid, req.Query, req.Demographics)
	if err != nil {
		h.Log.Error("survey: upsert", zap.Error(err))
		httpjson.ServerError(w)
		return
	}

	httpjson.OK(w, surveyResponse{
		Completed:    true,
		Query:        q.Query,
		Demographics: &q.Demographics,
	})
}
