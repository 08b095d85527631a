package portal

import (
	"errors"

	"github.com/tendant/portfolio-gate/pkg/identity"
)

// Category groups flow failures by how the user should react.
type Category string

const (
	ValidationError Category = "validation"
	CredentialError Category = "credential"
	ConflictError   Category = "conflict"
	RateLimitError  Category = "rate_limit"
	DeliveryError   Category = "delivery"
	UnknownError    Category = "unknown"
)

// ErrRequestInFlight is returned when the same form is submitted again
// before the previous submission finished.
var ErrRequestInFlight = errors.New("request already in flight")

// FlowError is a failure that has been mapped and shown to the user.
type FlowError struct {
	Category Category
	Message  string
	Err      error
}

func (e *FlowError) Error() string { return e.Message }

func (e *FlowError) Unwrap() error { return e.Err }

func validationError(msg string) *FlowError {
	return &FlowError{Category: ValidationError, Message: msg}
}

// User-facing copy for local validation.
const (
	msgInvalidEmail     = "Please enter a valid email address."
	msgPasswordRequired = "Please enter your password."
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordTooShort = "Password must be at least %d characters long"
	msgNoUserLoggedIn   = "No user logged in. Please sign up first."
	msgGenericFailure   = "An error occurred. Please try again."
	msgUnknownTab       = "Unknown tab."
)

// MapError converts a provider error into a FlowError with stable copy.
// Unrecognised errors keep the raw provider message.
func MapError(err error) *FlowError {
	if err == nil {
		return nil
	}
	var fe *FlowError
	if errors.As(err, &fe) {
		return fe
	}

	mapped := &FlowError{Err: err}
	switch identity.CodeOf(err) {
	case identity.CodeUserNotFound:
		mapped.Category, mapped.Message = CredentialError, "No account found with this email address."
	case identity.CodeWrongPassword:
		mapped.Category, mapped.Message = CredentialError, "Invalid password. Please try again."
	case identity.CodeInvalidCredential:
		mapped.Category, mapped.Message = CredentialError, "Invalid email or password. Please try again."
	case identity.CodeUserDisabled:
		mapped.Category, mapped.Message = CredentialError, "This account has been disabled. Please contact support."
	case identity.CodeEmailInUse:
		mapped.Category, mapped.Message = ConflictError, "An account with this email already exists."
	case identity.CodeWeakPassword:
		mapped.Category, mapped.Message = ValidationError, "Password is too weak. Please choose a stronger password."
	case identity.CodeInvalidEmail:
		mapped.Category, mapped.Message = ValidationError, msgInvalidEmail
	case identity.CodeNoCurrentUser:
		mapped.Category, mapped.Message = ValidationError, msgNoUserLoggedIn
	case identity.CodeTooManyRequests:
		mapped.Category, mapped.Message = RateLimitError, "Too many failed attempts. Please try again later."
	case identity.CodeDeliveryFailed:
		mapped.Category, mapped.Message = DeliveryError, rawMessage(err)
	default:
		mapped.Category, mapped.Message = UnknownError, rawMessage(err)
	}
	return mapped
}

func rawMessage(err error) string {
	var e *identity.Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgGenericFailure
}
