package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern returns chi's matched pattern, e.g. "/api/v1/payments/{id}",
// falling back to the raw path outside a chi router. chi fills the pattern
// while routing, so it is only complete after the next handler returns.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
