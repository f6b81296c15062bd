package user

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/orderhub/orderhub-api/internal/pkg/response"
	"github.com/orderhub/orderhub-api/internal/pkg/validator"
)

// Store is the account access the handler needs
type Store interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, point GeoPoint) (*User, error)
	AdjustCredit(ctx context.Context, id uuid.UUID, delta decimal.Decimal) (*User, error)
}

type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// GetMe handles GET /users/me
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	actor := FromContext(r.Context())
	u, err := h.store.FindByID(r.Context(), actor.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, u)
}

// UpdateMe handles PATCH /users/me
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	actor := FromContext(r.Context())
	u, err := h.store.UpdateProfile(r.Context(), actor.UserID, &req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, u)
}

// UpdateLocation handles PATCH /users/me/location
func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req UpdateLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	point := GeoPoint{Longitude: req.Longitude, Latitude: req.Latitude}
	if !point.Valid() {
		response.BadRequest(w, "invalid coordinates")
		return
	}

	actor := FromContext(r.Context())
	u, err := h.store.UpdateLocation(r.Context(), actor.UserID, point)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, u)
}

// ListAll handles GET /users (admin)
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.FindAll(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, users)
}

// AdjustCredits handles PATCH /users/{id}/credits (admin). The delta is
// signed; the ledger rejects a debit that would overdraw the balance.
func (h *Handler) AdjustCredits(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid user id")
		return
	}

	var req AdjustCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	delta, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.BadRequest(w, "invalid amount")
		return
	}

	u, err := h.store.AdjustCredit(r.Context(), id, delta)
	if err != nil {
		h.writeError(w, err)
		return
	}
	response.OK(w, u)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		response.NotFound(w, "user not found")
	case errors.Is(err, ErrInvalidAmount):
		response.BadRequest(w, "invalid amount")
	case errors.Is(err, ErrInsufficientCredits):
		response.Conflict(w, "INSUFFICIENT_CREDITS", "insufficient credits")
	default:
		response.InternalError(w)
	}
}
