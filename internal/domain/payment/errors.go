package payment

import "errors"

var (
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrProofRequired    = errors.New("payment screenshot is required")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidStatus    = errors.New("invalid payment status")
	ErrAlreadyProcessed = errors.New("payment already processed")
	ErrForbidden        = errors.New("forbidden")
)
