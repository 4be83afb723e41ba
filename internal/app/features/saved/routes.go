// internal/app/features/saved/routes.go
package saved

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.ServeList)
		r.Post("/", h.HandleSave)
		r.Delete("/{id}", h.HandleDelete)
	})
	return r
}
