package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, client-facing classification of a failure
type ErrorKind string

const (
	KindDuplicateAccount   ErrorKind = "DUPLICATE_ACCOUNT"
	KindInvalidCredentials ErrorKind = "INVALID_CREDENTIALS"
	KindUnauthenticated    ErrorKind = "UNAUTHENTICATED"
	KindInvalidToken       ErrorKind = "INVALID_TOKEN"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindInvalidDateRange   ErrorKind = "INVALID_DATE_RANGE"
	KindValidation         ErrorKind = "VALIDATION_FAILURE"
	KindUnavailable        ErrorKind = "UNAVAILABLE"
	KindInternal           ErrorKind = "INTERNAL"
)

// Identity errors
var (
	ErrDuplicateAccount   = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session errors
var (
	ErrUnauthenticated = errors.New("no token, authorization denied")
	ErrInvalidToken    = errors.New("token is not valid")
	ErrTokenExpired    = fmt.Errorf("%w: token has expired", ErrInvalidToken)
	ErrTokenMalformed  = fmt.Errorf("%w: malformed token", ErrInvalidToken)
)

// Resource errors
var (
	ErrNotFound        = errors.New("not found")
	ErrAccountNotFound = fmt.Errorf("user %w", ErrNotFound)
	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrForbidden       = errors.New("not authorized")
)

// Input errors
var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidDateRange = errors.New("check-out date must be after check-in date")
)

// ErrUnavailable is returned when an optional backend is not configured
var ErrUnavailable = errors.New("service unavailable")

// NewValidationError wraps ErrValidation with a field-level message
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// KindOf classifies err; unknown errors are KindInternal
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateAccount):
		return KindDuplicateAccount
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrInvalidToken):
		return KindInvalidToken
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidDateRange):
		return KindInvalidDateRange
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}
