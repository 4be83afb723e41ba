// internal/app/features/orgadmin/routes.go
package orgadmin

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(sm.RequireSignedIn)
		r.Use(sm.RequireRole("orgadmin"))

		r.Get("/account", h.ServeAccount)
		r.Put("/account", h.HandleUpdateSettings)

		r.Get("/form", h.ServeForm)
		r.Put("/form", h.HandleReplaceForm)

		r.Get("/applications", h.ServeApplications)
		r.Post("/applications/{id}/approve", h.HandleApprove)
		r.Delete("/applications/{id}", h.HandleReject)

		r.Get("/events", h.ServeEvents)
		r.Post("/events", h.HandleCreateEvent)
		r.Put("/events/{id}", h.HandleUpdateEvent)
		r.Delete("/events/{id}", h.HandleDeleteEvent)
	})
	return r
}
