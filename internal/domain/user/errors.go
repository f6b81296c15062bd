package user

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientCredits = errors.New("insufficient credits")
)
