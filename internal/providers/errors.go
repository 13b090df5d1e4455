package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/envelope"
)

// Gateway client errors may expose these to refine the envelope.
type (
	httpStatuser interface{ HTTPStatus() int }
	errorCoder   interface{ ErrorCode() string }
	detailer     interface{ ErrorDetails() any }
)

// wrapGatewayError turns a failed gateway call into an error envelope whose
// message reads "[<Provider> <Operation>] <cause>". Envelopes pass through.
func wrapGatewayError(provider, operation, fallbackCode string, err error) error {
	var env *envelope.ErrorResponse
	if errors.As(err, &env) {
		return err
	}

	p := envelope.ErrorParams{
		Message: fmt.Sprintf("[%s %s] %v", provider, operation, err),
		Code:    fallbackCode,
		Details: map[string]any{"message": err.Error()},
		Cause:   err,
	}

	var hs httpStatuser
	if errors.As(err, &hs) && hs.HTTPStatus() >= http.StatusBadRequest {
		p.StatusCode = hs.HTTPStatus()
	}
	var ec errorCoder
	if errors.As(err, &ec) && ec.ErrorCode() != "" {
		p.Code = ec.ErrorCode()
	}
	var dt detailer
	if errors.As(err, &dt) && dt.ErrorDetails() != nil {
		p.Details = dt.ErrorDetails()
	}

	switch {
	case errors.Is(err, domainErrors.ErrGatewayUnavailable):
		p.StatusCode = http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		p.StatusCode = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		p.StatusCode = http.StatusRequestTimeout
	case errors.Is(err, domainErrors.ErrMalformedResponse):
		p.StatusCode = http.StatusBadGateway
	}

	return envelope.NewError(p)
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domainErrors.ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// UnsupportedOperation reports an operation the named gateway does not offer.
func UnsupportedOperation(name Name, operation string) error {
	return envelope.FromError(fmt.Errorf("%w: %s does not support %s", domainErrors.ErrUnsupportedOperation, name, operation))
}
