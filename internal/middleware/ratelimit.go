package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/go-chi/httprate"
)

const codeRateLimited = "rate_limited"

// RateLimit caps requests per client IP. A non-positive limit disables it.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			env := envelope.NewError(envelope.ErrorParams{
				Message:    fmt.Sprintf("rate limit of %d requests per %s exceeded", requests, window),
				StatusCode: http.StatusTooManyRequests,
				Code:       codeRateLimited,
			})
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(env.Status)
			_ = json.NewEncoder(w).Encode(env)
		}),
	)
}
