package user

// UpdateProfileRequest carries the mutable profile fields; nil leaves a field unchanged
type UpdateProfileRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=100"`
	Phone   *string `json:"phone" validate:"omitempty,max=32"`
	Address *string `json:"address" validate:"omitempty,max=255"`
}

// UpdateLocationRequest sets the profile delivery coordinates
type UpdateLocationRequest struct {
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
}

// AdjustCreditRequest applies a signed delta to an account balance (admin)
type AdjustCreditRequest struct {
	Amount string `json:"amount" validate:"required"`
}
