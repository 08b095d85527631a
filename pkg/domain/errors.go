package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound              = errors.New("user not found")
	ErrUserAlreadyExists         = errors.New("user already exists")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrAccountLocked             = errors.New("account locked due to too many failed login attempts")
	ErrAccountDisabled           = errors.New("account disabled")
	ErrSessionNotFound           = errors.New("session not found")
	ErrSessionExpired            = errors.New("session expired")
	ErrSessionRevoked            = errors.New("session revoked")
	ErrNoActiveSession           = errors.New("no active session")
	ErrInvalidToken              = errors.New("invalid token")
	ErrVerificationTokenNotFound = errors.New("verification token not found")
	ErrVerificationTokenExpired  = errors.New("verification token expired")
	ErrVerificationTokenConsumed = errors.New("verification token already used")
	ErrVerificationTokenInvalid  = errors.New("invalid verification token")
)

// Validation errors
var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrWeakPassword     = errors.New("password does not meet requirements")
	ErrEmailNotVerified = errors.New("email not verified")
)

// Profile store errors
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// Delivery errors
var (
	ErrDeliveryFailed = errors.New("email delivery failed")
)
