// Package envelope builds the uniform success and error shapes returned for
// every gateway operation, regardless of which provider served it.
package envelope

import (
	"errors"
	"net/http"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
)

// Canonical error codes.
const (
	CodeValidation           = "validation_error"
	CodeUnauthorized         = "unauthorized"
	CodeForbidden            = "not_enough_permissions"
	CodeNotFound             = "not_found"
	CodeUnexpected           = "unexpected_error"
	CodeInternal             = "internal_server_error"
	CodeUnsupportedProvider  = "unsupported_provider"
	CodeUnsupportedOperation = "unsupported_operation"
)

const (
	DefaultSuccessStatus = http.StatusOK
	DefaultErrorStatus   = http.StatusUnprocessableEntity
	defaultErrorMessage  = "An unexpected error occurred."
)

// SuccessResponse is the envelope for a completed operation.
type SuccessResponse[T any] struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the envelope for a failed operation. It is also the error
// value returned by providers, so callers can inspect it with errors.As.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`

	cause error
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

func (e *ErrorResponse) Unwrap() error {
	return e.cause
}

// ErrorParams holds the inputs for NewError. Zero values select defaults.
type ErrorParams struct {
	Message    string
	StatusCode int
	Code       string
	Details    any
	Cause      error
}

// Success wraps data in a success envelope. A zero status means 200.
func Success[T any](data T, status int, message string) SuccessResponse[T] {
	if status == 0 {
		status = DefaultSuccessStatus
	}
	return SuccessResponse[T]{
		Success: true,
		Status:  status,
		Data:    data,
		Message: message,
	}
}

// NewError builds an error envelope. The status defaults to 422 and, when no
// explicit code is given, the code is derived from the status.
func NewError(p ErrorParams) *ErrorResponse {
	status := p.StatusCode
	if status == 0 {
		status = DefaultErrorStatus
	}
	code := p.Code
	if code == "" {
		code = CodeForStatus(status)
	}
	message := p.Message
	if message == "" {
		message = defaultErrorMessage
	}
	return &ErrorResponse{
		Success: false,
		Status:  status,
		Code:    code,
		Message: message,
		Details: p.Details,
		cause:   p.Cause,
	}
}

// CodeForStatus is the single place error codes are derived from statuses.
func CodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return CodeUnexpected
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// FromError converts any error into an error envelope. Envelopes pass through
// unchanged; known sentinels get their canonical status and code.
func FromError(err error) *ErrorResponse {
	if err == nil {
		return nil
	}

	var env *ErrorResponse
	if errors.As(err, &env) {
		return env
	}

	var validationErr *domainErrors.ValidationError
	if errors.As(err, &validationErr) {
		return NewError(ErrorParams{
			Message: err.Error(),
			Code:    CodeValidation,
			Details: []*domainErrors.ValidationError{validationErr},
			Cause:   err,
		})
	}

	switch {
	case errors.Is(err, domainErrors.ErrUnsupportedProvider):
		return NewError(ErrorParams{Message: err.Error(), StatusCode: http.StatusBadRequest, Code: CodeUnsupportedProvider, Cause: err})
	case errors.Is(err, domainErrors.ErrUnsupportedOperation):
		return NewError(ErrorParams{Message: err.Error(), StatusCode: http.StatusNotImplemented, Code: CodeUnsupportedOperation, Cause: err})
	case errors.Is(err, domainErrors.ErrInvalidConfig), errors.Is(err, domainErrors.ErrValidationFailed):
		return NewError(ErrorParams{Message: err.Error(), Code: CodeValidation, Cause: err})
	case errors.Is(err, domainErrors.ErrGatewayUnavailable):
		return NewError(ErrorParams{Message: err.Error(), StatusCode: http.StatusServiceUnavailable, Cause: err})
	}

	var domainErr *domainErrors.DomainError
	if errors.As(err, &domainErr) {
		return NewError(ErrorParams{Message: domainErr.Error(), Code: domainErr.Code, Cause: err})
	}

	return NewError(ErrorParams{
		Message:    err.Error(),
		StatusCode: http.StatusInternalServerError,
		Cause:      err,
	})
}
