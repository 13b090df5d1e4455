package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Tracing starts a server span per request, named "METHOD /route/{pattern}"
// once chi has matched the route.
func Tracing(service string, opts ...otelhttp.Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		// otelhttp only renames the span itself when r.Pattern is set.
		named := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			trace.SpanFromContext(r.Context()).SetName(spanName(r))
		})

		handlerOpts := append([]otelhttp.Option{
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return spanName(r)
			}),
		}, opts...)
		return otelhttp.NewHandler(named, service, handlerOpts...)
	}
}

func spanName(r *http.Request) string {
	return r.Method + " " + routePattern(r)
}
