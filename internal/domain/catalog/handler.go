package catalog

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orderhub/orderhub-api/internal/middleware"
	"github.com/orderhub/orderhub-api/internal/pkg/imaging"
	"github.com/orderhub/orderhub-api/internal/pkg/response"
	"github.com/orderhub/orderhub-api/internal/pkg/upload"
	"github.com/orderhub/orderhub-api/internal/pkg/validator"
)

const maxImageSize = 10 << 20 // 10 MB

type Handler struct {
	repo     *Repository
	uploader *upload.Gateway
	images   *imaging.Processor
}

func NewHandler(repo *Repository, uploader *upload.Gateway, images *imaging.Processor) *Handler {
	return &Handler{repo: repo, uploader: uploader, images: images}
}

// ListProducts handles GET /products (public)
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, products)
}

// ListServices handles GET /services (public)
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.repo.ListServices(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, services)
}

// GetProduct handles GET /products/{id} (public)
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}
	p, err := h.repo.GetProductByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// GetService handles GET /services/{id} (public)
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid service id")
		return
	}
	s, err := h.repo.GetServiceByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, s)
}

// CreateProduct handles POST /products (admin)
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if req.Price.IsNegative() {
		response.BadRequest(w, "price must not be negative")
		return
	}

	p := &Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: nullString(req.Description),
		Price:       req.Price,
		Stock:       req.Stock,
		Category:    req.Category,
		Available:   true,
		CreatedBy:   middleware.GetActor(r.Context()).UserID,
	}
	if err := h.repo.CreateProduct(r.Context(), p); err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, p)
}

// CreateService handles POST /services (admin)
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if req.Price.IsNegative() {
		response.BadRequest(w, "price must not be negative")
		return
	}

	s := &Service{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: nullString(req.Description),
		Price:       req.Price,
		Category:    req.Category,
		Available:   true,
		CreatedBy:   middleware.GetActor(r.Context()).UserID,
	}
	if err := h.repo.CreateService(r.Context(), s); err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, s)
}

// UpdateProduct handles PATCH /products/{id} (admin)
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	h.updateItem(w, r, KindProduct)
}

// UpdateService handles PATCH /services/{id} (admin)
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	h.updateItem(w, r, KindService)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, kind ItemKind) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if req.Price != nil && req.Price.IsNegative() {
		response.BadRequest(w, "price must not be negative")
		return
	}

	var result interface{}
	if kind == KindProduct {
		result, err = h.repo.UpdateProduct(r.Context(), id, &req)
	} else {
		result, err = h.repo.UpdateService(r.Context(), id, &req)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

// UpdateStock handles PATCH /products/{id}/stock (admin, absolute set)
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	var req UpdateStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if req.NewStock < 0 {
		response.BadRequest(w, "invalid stock value")
		return
	}

	p, err := h.repo.SetStock(r.Context(), id, req.NewStock)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, p)
}

// DeleteProduct handles DELETE /products/{id} (admin)
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.deleteItem(w, r, KindProduct)
}

// DeleteService handles DELETE /services/{id} (admin)
func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	h.deleteItem(w, r, KindService)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request, kind ItemKind) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	if kind == KindProduct {
		err = h.repo.DeleteProduct(r.Context(), id)
	} else {
		err = h.repo.DeleteService(r.Context(), id)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, nil)
}

// UploadProductImage handles POST /products/{id}/image (admin, multipart)
func (h *Handler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, KindProduct)
}

// UploadServiceImage handles POST /services/{id}/image (admin, multipart)
func (h *Handler) UploadServiceImage(w http.ResponseWriter, r *http.Request) {
	h.uploadImage(w, r, KindService)
}

func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request, kind ItemKind) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid item id")
		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		response.BadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	processed, err := h.images.Process(file)
	if err != nil {
		response.BadRequest(w, "unsupported image format")
		return
	}

	result, err := h.uploader.Upload(r.Context(), "catalog", header.Filename,
		bytes.NewReader(processed.Data), processed.ContentType)
	if err != nil {
		response.BadGateway(w, "UPLOAD_FAILED", "failed to upload image")
		return
	}

	if err := h.repo.SetImageURL(r.Context(), kind, id, result.URL); err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, result)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrItemNotFound):
		response.NotFound(w, "item not found")
	case errors.Is(err, ErrInvalidStock):
		response.BadRequest(w, "invalid stock value")
	case errors.Is(err, ErrInsufficientStock):
		response.Conflict(w, "INSUFFICIENT_STOCK", "insufficient stock")
	default:
		response.InternalError(w)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
