package apperrors

import "errors"

// Stable error kinds returned to the presentation layer. Handlers map these
// to HTTP statuses; everything else is treated as an internal error.
var (
	ErrNotFound             = errors.New("not found")
	ErrSlotTaken            = errors.New("time slot already booked")
	ErrPartialWrite         = errors.New("partial write: record copies may have diverged")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrDeliveryFailed       = errors.New("failed to send verification code")
	ErrExpiredOrInvalidCode = errors.New("verification code expired or invalid")
	ErrSessionExpired       = errors.New("login session expired")
	ErrValidation           = errors.New("validation failed")
	ErrAlreadyRegistered    = errors.New("email already registered")
)
