// internal/app/features/memberships/routes.go
package memberships

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.ServeList)
		r.Post("/{orgID}/join", h.HandleJoin)
		r.Post("/{orgID}/apply", h.HandleApply)
		r.Get("/{orgID}/form", h.ServeForm)
		r.Delete("/{orgID}", h.HandleLeave)
	})
	return r
}
