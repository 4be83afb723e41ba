// internal/app/features/calendar/routes.go
package calendar

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// The OAuth redirect arrives from Google's servers without a bearer
	// token; identity rides in the state parameter.
	r.Get("/callback", h.HandleCallback)

	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Get("/", h.ServeStatus)
		r.Get("/connect", h.HandleConnect)
		r.Post("/sync", h.HandleSync)
		r.Delete("/", h.HandleDisconnect)
	})
	return r
}
