package payment

import "io"

// ProofFile is the uploaded screenshot backing a payment claim
type ProofFile struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// CreateRequest is a user-submitted top-up claim
type CreateRequest struct {
	Amount string `json:"amount" validate:"required"`
	Proof  *ProofFile
}

// ReviewRequest is the admin verdict on a pending payment
type ReviewRequest struct {
	Status string `json:"status" validate:"required,payment_status"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
