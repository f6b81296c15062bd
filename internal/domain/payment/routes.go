package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderhub/orderhub-api/internal/middleware"
)

// Routes returns payment routes; all require authentication, review
// operations are admin-only
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.Create)
	r.Get("/", h.ListMine)
	r.Get("/{id}", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())

		r.Get("/all", h.ListAll)
		r.Patch("/{id}/status", h.Review)
	})

	return r
}
