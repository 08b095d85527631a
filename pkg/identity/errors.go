package identity

import (
	"errors"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// Code is a stable provider error code.
type Code string

const (
	CodeUserNotFound      Code = "user-not-found"
	CodeWrongPassword     Code = "wrong-password"
	CodeInvalidCredential Code = "invalid-credential"
	CodeEmailInUse        Code = "email-already-in-use"
	CodeWeakPassword      Code = "weak-password"
	CodeInvalidEmail      Code = "invalid-email"
	CodeUserDisabled      Code = "user-disabled"
	CodeTooManyRequests   Code = "too-many-requests"
	CodeDeliveryFailed    Code = "delivery-failed"
	CodeNoCurrentUser     Code = "no-current-user"
	CodeInternal          Code = "internal-error"
)

// Error is returned by every Provider operation that fails.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return "auth/" + string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// CodeOf returns the provider code carried by err, or "" if err is not an
// *Error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// wrap converts a backend error into a provider error.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return newError(CodeUserNotFound, "There is no user record corresponding to this identifier.", err)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return newError(CodeWrongPassword, "The password is invalid.", err)
	case errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrSessionRevoked):
		return newError(CodeInvalidCredential, "The supplied credential is invalid or has expired.", err)
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return newError(CodeEmailInUse, "The email address is already in use by another account.", err)
	case errors.Is(err, domain.ErrWeakPassword):
		return newError(CodeWeakPassword, err.Error(), err)
	case errors.Is(err, domain.ErrInvalidEmail):
		return newError(CodeInvalidEmail, "The email address is badly formatted.", err)
	case errors.Is(err, domain.ErrAccountDisabled):
		return newError(CodeUserDisabled, "The user account has been disabled.", err)
	case errors.Is(err, domain.ErrAccountLocked):
		return newError(CodeTooManyRequests, "Access to this account has been temporarily disabled due to many failed login attempts.", err)
	case errors.Is(err, domain.ErrNoActiveSession):
		return newError(CodeNoCurrentUser, "No user is currently signed in.", err)
	case errors.Is(err, domain.ErrDeliveryFailed):
		return newError(CodeDeliveryFailed, "The email could not be delivered.", err)
	default:
		return newError(CodeInternal, err.Error(), err)
	}
}
