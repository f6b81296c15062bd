package order

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderhub/orderhub-api/internal/middleware"
)

// Routes returns order routes; all require authentication, admin
// operations are additionally gated
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(authMiddleware)

	r.Post("/", h.PlaceOrder)
	r.Get("/", h.ListMine)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin())

		r.Get("/all", h.ListAll)
		r.Get("/nearby", h.Nearby)
		r.Patch("/{id}/status", h.UpdateStatus)
		r.Patch("/{id}/payment", h.VerifyPayment)
	})

	return r
}
