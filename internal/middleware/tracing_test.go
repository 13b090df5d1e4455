package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newRecorder() (*tracetest.SpanRecorder, otelhttp.Option) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	return rec, otelhttp.WithTracerProvider(tp)
}

func TestTracing_NamesSpanAfterRoutePattern(t *testing.T) {
	rec, opt := newRecorder()

	r := chi.NewRouter()
	r.Use(Tracing("paygate", opt))
	r.Get("/api/v1/refunds/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/api/v1/refunds/rfnd_123", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/refunds/{id}", spans[0].Name())
	assert.Equal(t, trace.SpanKindServer, spans[0].SpanKind())
}

func TestTracing_NamesSpanAfterNestedRoutePattern(t *testing.T) {
	rec, opt := newRecorder()

	r := chi.NewRouter()
	r.Use(Tracing("paygate", opt))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/users/{userId}/payments", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	for _, user := range []string{"user_1", "user_2"} {
		req := httptest.NewRequest("GET", "/api/v1/users/"+user+"/payments", nil)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	spans := rec.Ended()
	require.Len(t, spans, 2)
	for _, span := range spans {
		assert.Equal(t, "GET /api/v1/users/{userId}/payments", span.Name())
	}
}

func TestTracing_UnmatchedRouteKeepsPath(t *testing.T) {
	rec, opt := newRecorder()

	r := chi.NewRouter()
	r.Use(Tracing("paygate", opt))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /missing", spans[0].Name())
}

func TestTracing_WithoutChiRoutePattern(t *testing.T) {
	rec, opt := newRecorder()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/unknown", nil)
	w := httptest.NewRecorder()

	Tracing("paygate", opt)(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /unknown", spans[0].Name())
}

func TestTracing_SpanVisibleToHandler(t *testing.T) {
	_, opt := newRecorder()

	var valid bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		valid = trace.SpanContextFromContext(r.Context()).IsValid()
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("POST", "/api/v1/charges", nil)
	Tracing("paygate", opt)(handler).ServeHTTP(httptest.NewRecorder(), req)

	assert.True(t, valid, "handler should run inside the server span")
}

func TestTracing_PreservesResponse(t *testing.T) {
	_, opt := newRecorder()
	expectedBody := `{"success":true,"status":201}`

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(expectedBody))
	})

	req := httptest.NewRequest("POST", "/api/v1/charges", nil)
	w := httptest.NewRecorder()

	Tracing("paygate", opt)(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, expectedBody, w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}
