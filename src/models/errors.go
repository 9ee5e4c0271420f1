package models

import "errors"

// Closed error set for the store and service layers. Handlers translate
// these to HTTP statuses with errors.Is; anything else is a 500.
var (
	ErrNotFound          = errors.New("not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMissingFields     = errors.New("missing required fields")
	ErrDuplicateCategory = errors.New("category name already exists for this user")
	ErrCategoryInUse     = errors.New("category has associated expenses")
	ErrInvalidCategory   = errors.New("category does not belong to this user")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidOTP        = errors.New("invalid or expired otp")
	ErrOTPExpired        = errors.New("otp has expired")
	ErrDeliveryFailed    = errors.New("failed to send otp email")
)
