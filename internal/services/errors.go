package services

import (
	"errors"
	"fmt"

	"store-backend-api/internal/repositories"
)

// Error kinds map to HTTP status categories at the handler layer
var (
	// ErrInvalidInput marks client errors (bad payloads, business rule violations)
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks lookups that matched nothing
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks operations the caller is not allowed to perform
	ErrForbidden = errors.New("forbidden")

	// ErrGateway marks failures in external services (payment, shipping)
	ErrGateway = errors.New("gateway error")
)

// ServiceError wraps an error kind with a user-facing message
type ServiceError struct {
	Kind    error
	Message string
	Err     error
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is matches against the error kind
func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Kind, target) || (e.Err != nil && errors.Is(e.Err, target))
}

// invalidf builds an invalid-input error
func invalidf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: ErrInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// notFoundf builds a not-found error
func notFoundf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

// forbiddenf builds a forbidden error
func forbiddenf(format string, args ...interface{}) *ServiceError {
	return &ServiceError{Kind: ErrForbidden, Message: fmt.Sprintf(format, args...)}
}

// gatewayErr wraps an external service failure
func gatewayErr(message string, err error) *ServiceError {
	return &ServiceError{Kind: ErrGateway, Message: message, Err: err}
}

// wrapRepoErr converts a repository error into a service error, keeping
// not-found and validation semantics.
func wrapRepoErr(message string, err error) error {
	if err == nil {
		return nil
	}
	if repositories.IsNotFound(err) {
		return &ServiceError{Kind: ErrNotFound, Message: message, Err: err}
	}
	if repositories.IsValidation(err) || repositories.IsDuplicate(err) {
		return &ServiceError{Kind: ErrInvalidInput, Message: message, Err: err}
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsInvalidInput reports whether err is a client error
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsForbidden reports whether err is a forbidden error
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsGateway reports whether err is an external gateway error
func IsGateway(err error) bool { return errors.Is(err, ErrGateway) }
