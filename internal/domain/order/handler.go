package order

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/orderhub/orderhub-api/internal/domain/catalog"
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

type placeOrderBody struct {
	Items         []ItemInput    `json:"items" validate:"required,min=1,dive"`
	PaymentMethod string         `json:"payment_method" validate:"required,payment_method"`
	Location      *user.GeoPoint `json:"location"`
}

// PlaceOrder handles POST /orders. Credits orders arrive as JSON;
// transfer orders arrive as multipart with a screenshot part and the
// remaining fields alongside it.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	actor := middleware.GetActor(r.Context())

	var body placeOrderBody
	var proof *ProofFile

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxProofSize); err != nil {
			response.BadRequest(w, "invalid multipart form")
			return
		}
		if err := json.Unmarshal([]byte(r.FormValue("items")), &body.Items); err != nil {
			response.BadRequest(w, "items must be a JSON array")
			return
		}
		body.PaymentMethod = r.FormValue("payment_method")
		body.Location = parseFormLocation(r)

		if file, header, err := r.FormFile("screenshot"); err == nil {
			defer file.Close()
			proof = &ProofFile{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Reader:      file,
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.BadRequest(w, "invalid JSON body")
			return
		}
	}

	if errs := validator.Validate(&body); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	o, err := h.svc.PlaceOrder(r.Context(), actor, PlaceOrderRequest{
		Items:         body.Items,
		PaymentMethod: PaymentMethod(body.PaymentMethod),
		Location:      body.Location,
		Proof:         proof,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, o)
}

// ListMine handles GET /orders (caller's orders, newest first)
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetUserOrders(r.Context(), middleware.GetActor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, orders)
}

// ListAll handles GET /orders/all (admin)
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Status:        Status(r.URL.Query().Get("status")),
		PaymentStatus: PaymentStatus(r.URL.Query().Get("payment_status")),
	}
	orders, err := h.svc.GetAllOrders(r.Context(), middleware.GetActor(r.Context()), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, orders)
}

// UpdateStatus handles PATCH /orders/{id}/status (admin)
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	o, err := h.svc.UpdateOrderStatus(r.Context(), middleware.GetActor(r.Context()), orderID, Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, o)
}

// VerifyPayment handles PATCH /orders/{id}/payment (admin)
func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "invalid order id")
		return
	}

	var req VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	o, err := h.svc.VerifyPayment(r.Context(), middleware.GetActor(r.Context()), orderID, PaymentStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, o)
}

// Nearby handles GET /orders/nearby?longitude=&latitude=&max_distance= (admin)
func (h *Handler) Nearby(w http.ResponseWriter, r *http.Request) {
	longitude, lonErr := strconv.ParseFloat(r.URL.Query().Get("longitude"), 64)
	latitude, latErr := strconv.ParseFloat(r.URL.Query().Get("latitude"), 64)
	if lonErr != nil || latErr != nil {
		response.BadRequest(w, "longitude and latitude are required")
		return
	}

	maxDistance := DefaultNearbyRadius
	if raw := r.URL.Query().Get("max_distance"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "invalid max_distance")
			return
		}
		maxDistance = parsed
	}

	orders, err := h.svc.GetNearbyOrders(r.Context(), middleware.GetActor(r.Context()),
		user.GeoPoint{Longitude: longitude, Latitude: latitude}, maxDistance)
	if err != nil {
		writeError(w, err)
		return
	}
	response.OK(w, orders)
}

func parseFormLocation(r *http.Request) *user.GeoPoint {
	lonRaw := r.FormValue("longitude")
	latRaw := r.FormValue("latitude")
	if lonRaw == "" || latRaw == "" {
		return nil
	}
	longitude, lonErr := strconv.ParseFloat(lonRaw, 64)
	latitude, latErr := strconv.ParseFloat(latRaw, 64)
	if lonErr != nil || latErr != nil {
		return nil
	}
	return &user.GeoPoint{Longitude: longitude, Latitude: latitude}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		response.BadRequest(w, "order must contain at least one item")
	case errors.Is(err, ErrLocationRequired):
		response.BadRequest(w, "location is required - provide in request or user profile")
	case errors.Is(err, ErrProofRequired):
		response.BadRequest(w, "payment screenshot is required")
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidItemKind):
		response.BadRequest(w, "invalid request")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "admin rights required")
	case errors.Is(err, ErrOrderNotFound):
		response.NotFound(w, "order not found")
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, "user not found")
	case errors.Is(err, catalog.ErrItemNotFound):
		response.NotFound(w, "item not found")
	case errors.Is(err, catalog.ErrInsufficientStock):
		response.Conflict(w, "INSUFFICIENT_STOCK", "insufficient stock")
	case errors.Is(err, user.ErrInsufficientCredits):
		response.Conflict(w, "INSUFFICIENT_CREDITS", "insufficient credits")
	case errors.Is(err, upload.ErrUploadFailed):
		response.BadGateway(w, "UPLOAD_FAILED", "failed to upload payment screenshot")
	case errors.Is(err, ErrNearbyDisabled):
		response.Error(w, http.StatusServiceUnavailable, "NEARBY_DISABLED", "nearby lookup not configured")
	default:
		response.InternalError(w)
	}
}
