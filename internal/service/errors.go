package service

import "errors"

// Service-level errors, mapped to HTTP statuses by the handlers
var (
	ErrInvalidIdentifier = errors.New("invalid identifier")
	ErrInvalidOTP        = errors.New("invalid OTP")
	ErrTooManyAttempts   = errors.New("too many OTP attempts")
	ErrOTPExpired        = errors.New("OTP expired")
	ErrResendTooEarly    = errors.New("OTP can be resent only after it expires")
	ErrSessionNotFound   = errors.New("session not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUnknownCrop       = errors.New("unknown crop")
	ErrInvalidToken      = errors.New("invalid token")
	ErrSignatureRequired = errors.New("signature is required")
	ErrShopRequired      = errors.New("shop selection is required")
	ErrInvalidAmount     = errors.New("amount must be positive")
)
