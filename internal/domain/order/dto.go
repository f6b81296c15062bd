package order

import (
	"io"

	"github.com/google/uuid"

	"github.com/orderhub/orderhub-api/internal/domain/catalog"
	"github.com/orderhub/orderhub-api/internal/domain/user"
)

// ItemInput is one cart line as submitted by the caller
type ItemInput struct {
	ItemType catalog.ItemKind `json:"item_type" validate:"required,item_kind"`
	ItemID   uuid.UUID        `json:"item_id" validate:"required"`
	Quantity int              `json:"quantity" validate:"required,min=1"`
}

// ProofFile is an uploaded payment-proof image
type ProofFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// PlaceOrderRequest is the full cart submission
type PlaceOrderRequest struct {
	Items         []ItemInput
	PaymentMethod PaymentMethod
	Location      *user.GeoPoint
	Proof         *ProofFile
}

// UpdateStatusRequest is the admin order-status transition payload
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,order_status"`
}

// VerifyPaymentRequest is the admin payment-status transition payload
type VerifyPaymentRequest struct {
	Status string `json:"status" validate:"required,payment_status"`
}

// Filter holds optional equality filters for admin listings
type Filter struct {
	Status        Status
	PaymentStatus PaymentStatus
}
