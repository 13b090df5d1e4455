package errors

import (
	"errors"
	"fmt"
)

var (
	// Configuration errors
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// Provider errors
	ErrUnsupportedOperation = errors.New("operation not supported by provider")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayRejected      = errors.New("request rejected by gateway")
	ErrMalformedResponse    = errors.New("malformed gateway response")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrInvalidInput     = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError is a single field-level violation.
type ValidationError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
