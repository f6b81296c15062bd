package order

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyCart        = errors.New("order must contain at least one item")
	ErrLocationRequired = errors.New("location is required")
	ErrProofRequired    = errors.New("payment screenshot is required")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrOrderNotFound    = errors.New("order not found")
	ErrForbidden        = errors.New("admin rights required")
	ErrNearbyDisabled   = errors.New("nearby lookup not configured")
)
