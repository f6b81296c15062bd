package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/orderhub/orderhub-api/internal/middleware"
)

// ProductRoutes returns product routes; mutations are admin-only
func (h *Handler) ProductRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListProducts)
	r.Get("/{id}", h.GetProduct)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())

		r.Post("/", h.CreateProduct)
		r.Patch("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
		r.Patch("/{id}/stock", h.UpdateStock)
		r.Post("/{id}/image", h.UploadProductImage)
	})

	return r
}

// ServiceRoutes returns service routes; mutations are admin-only
func (h *Handler) ServiceRoutes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListServices)
	r.Get("/{id}", h.GetService)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin())

		r.Post("/", h.CreateService)
		r.Patch("/{id}", h.UpdateService)
		r.Delete("/{id}", h.DeleteService)
		r.Post("/{id}/image", h.UploadServiceImage)
	})

	return r
}
