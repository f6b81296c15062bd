package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orderhub/orderhub-api/internal/domain/user"
	"github.com/orderhub/orderhub-api/internal/middleware"
	"github.com/orderhub/orderhub-api/internal/pkg/response"
	"github.com/orderhub/orderhub-api/internal/pkg/upload"
	"github.com/orderhub/orderhub-api/internal/pkg/validator"
)

const maxProofSize = 20 << 20 // 20 MB

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create handles POST /payments (multipart: amount + screenshot)
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxProofSize); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	req := CreateRequest{Amount: r.FormValue("amount")}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if file, header, err := r.FormFile("screenshot"); err == nil {
		defer file.Close()
		req.Proof = &ProofFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		}
	}

	p, err := h.svc.Create(r.Context(), middleware.GetActor(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, p)
}

// ListMine handles GET /payments
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.GetUserPayments(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, payments)
}

// ListAll handles GET /payments/all?status= (admin)
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.GetAllPayments(r.Context(), middleware.GetActor(r.Context()),
		Status(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, payments)
}

// Get handles GET /payments/{id} (owner or admin)
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return
	}

	p, err := h.svc.GetPayment(r.Context(), middleware.GetActor(r.Context()), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

// Review handles PATCH /payments/{id}/status (admin)
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	paymentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid payment id")
		return
	}

	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	p, err := h.svc.Review(r.Context(), middleware.GetActor(r.Context()), paymentID, Status(req.Status), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, p)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "amount must be a positive number")
	case errors.Is(err, ErrProofRequired):
		response.BadRequest(w, "payment screenshot is required")
	case errors.Is(err, ErrInvalidStatus):
		response.BadRequest(w, "status must be verified or rejected")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "access denied")
	case errors.Is(err, ErrPaymentNotFound):
		response.NotFound(w, "payment not found")
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, "user not found")
	case errors.Is(err, ErrAlreadyProcessed):
		response.Conflict(w, "ALREADY_PROCESSED", "payment has already been reviewed")
	case errors.Is(err, upload.ErrUploadFailed):
		response.BadGateway(w, "UPLOAD_FAILED", "failed to upload payment screenshot")
	default:
		response.InternalError(w)
	}
}
