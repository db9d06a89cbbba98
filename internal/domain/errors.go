// Package domain contains the core business entities for the Meridian back-office.
package domain

import (
	"errors"
	"strings"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (database, network, etc.).

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates a user with the same account,
	// username or email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates authentication failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSelfDeletion indicates an admin tried to delete their own account.
	ErrSelfDeletion = errors.New("cannot delete your own account")

	// ErrProductNotFound indicates the requested product does not exist.
	ErrProductNotFound = errors.New("product not found")

	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidOrderStatus indicates a status outside the known set.
	ErrInvalidOrderStatus = errors.New("invalid order status")

	// ErrUnauthenticated indicates no valid session was presented.
	// Absence of a session is a normal control-flow outcome, not an
	// exceptional condition; callers translate it into a redirect or a
	// structured rejection.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden indicates a valid session without sufficient privilege.
	ErrForbidden = errors.New("insufficient privilege")

	// ErrCSRFRejected indicates a missing or invalid CSRF token on a
	// mutating request. The request must be rejected with no side effects.
	ErrCSRFRejected = errors.New("csrf token rejected")
)

// ValidationError carries the ordered list of human-readable messages
// produced by independently evaluating every rule of an input. Multiple
// simultaneous violations are all reported, never just the first, and no
// write is performed when the list is non-empty.
type ValidationError struct {
	Messages []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError wraps a list of messages. Returns nil when the
// list is empty so callers can return the result directly.
func NewValidationError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
