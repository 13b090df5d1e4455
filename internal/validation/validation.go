// Package validation is the gate every gateway operation passes before any
// network call: each operation has its own schema, and a failing check
// returns a validation_error envelope listing every field violation.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		_, err := payment.ParseTimestamp(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("payment_status", func(fl validator.FieldLevel) bool {
		return payment.PaymentStatus(fl.Field().String()).Valid()
	})

	return v
}

// Struct runs the gate against an arbitrary tagged struct. The operation name
// prefixes the error message.
func Struct(operation string, schema any) error {
	err := validate.Struct(schema)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return envelope.NewError(envelope.ErrorParams{
			Message: fmt.Sprintf("[%s] %v", operation, err),
			Code:    envelope.CodeValidation,
			Cause:   fmt.Errorf("%w: %w", domainErrors.ErrValidationFailed, err),
		})
	}

	violations := make([]*domainErrors.ValidationError, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		v := &domainErrors.ValidationError{
			Field:   fieldPath(fe),
			Rule:    fe.Tag(),
			Message: describe(fe),
		}
		violations = append(violations, v)
		messages = append(messages, fmt.Sprintf("%q %s", v.Field, v.Message))
	}

	return envelope.NewError(envelope.ErrorParams{
		Message: fmt.Sprintf("[%s] %s", operation, strings.Join(messages, "; ")),
		Code:    envelope.CodeValidation,
		Details: violations,
		Cause:   domainErrors.ErrValidationFailed,
	})
}

// fieldPath drops the schema type name from the namespace:
// "listUserPaymentsSchema.filters.status" -> "filters.status".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "alpha":
		return "must contain only letters"
	case "uppercase":
		return "must be uppercase"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "iso8601":
		return "must be an ISO-8601 date"
	case "payment_status":
		return "must be a valid payment status"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}
