package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns user routes; listing and credit adjustments are admin-only
func (h *Handler) Routes(authMiddleware, adminOnly func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Get("/me", h.GetMe)
	r.Patch("/me", h.UpdateMe)
	r.Patch("/me/location", h.UpdateLocation)

	r.Group(func(r chi.Router) {
		r.Use(adminOnly)

		r.Get("/", h.ListAll)
		r.Patch("/{id}/credits", h.AdjustCredits)
	})

	return r
}
