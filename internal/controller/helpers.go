package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeSuccess[T any](w http.ResponseWriter, data T, status int, message string) {
	resp := envelope.Success(data, status, message)
	writeJSON(w, resp.Status, resp)
}

// writeError renders any error as an error envelope. Gateway failures keep the
// status and code the provider layer assigned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	env := envelope.FromError(err)
	if env.Status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("code", env.Code).
			Msg("request failed")
	}
	writeJSON(w, env.Status, env)
}

// decodeJSON reads a JSON body into dst. Malformed input becomes a
// validation_error envelope on the "body" field.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "invalid JSON: " + err.Error()
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			msg = "request body is required"
		case errors.As(err, &maxErr):
			msg = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
		}
		violation := &domainErrors.ValidationError{Field: "body", Rule: "json", Message: msg}
		return envelope.NewError(envelope.ErrorParams{
			Message: fmt.Sprintf("[request] %q %s", violation.Field, violation.Message),
			Code:    envelope.CodeValidation,
			Details: []*domainErrors.ValidationError{violation},
			Cause:   fmt.Errorf("%w: %w", domainErrors.ErrInvalidInput, err),
		})
	}
	return nil
}

func routeError(status int, code, message string) error {
	return envelope.NewError(envelope.ErrorParams{
		Message:    message,
		StatusCode: status,
		Code:       code,
	})
}
