// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/campushub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the profile endpoints (typically under "/profile").
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Get("/", h.ServeProfile)
		pr.Put("/", h.HandleUpdate)
		pr.Get("/picture", h.ServePicture)
		pr.Post("/picture", h.HandleUploadPicture)
	})

	return r
}
