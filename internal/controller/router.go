package controller

import (
	"net/http"
	"time"

	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/cassiomorais/paygate/internal/infrastructure/config"
	"github.com/cassiomorais/paygate/internal/infrastructure/observability"
	customMW "github.com/cassiomorais/paygate/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	Gateway   Gateway
	Ready     ReadinessCheck
	Metrics   *observability.Metrics
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger
	Server    config.ServerConfig
	Tracing   bool
	ServiceID string
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if deps.Tracing {
		r.Use(customMW.Tracing(deps.ServiceID))
	}
	r.Use(chimw.RealIP)
	r.Use(customMW.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(customMW.SecurityHeaders())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Server.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: deps.Server.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	if deps.Metrics != nil {
		r.Use(customMW.Metrics(deps.Metrics))
	}

	healthH := NewHealthController(string(deps.Gateway.Provider()), deps.Ready)
	paymentH := NewPaymentController(deps.Gateway)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, routeError(http.StatusNotFound, envelope.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, routeError(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(customMW.RateLimit(deps.Server.RateLimit.Requests, deps.Server.RateLimit.Window))

		r.Post("/charges", paymentH.Charge)
		r.Post("/refunds", paymentH.Refund)
		r.Get("/refunds/{id}", paymentH.GetRefundStatus)

		r.Get("/payments", paymentH.ListAllPayments)
		r.Get("/payments/{id}", paymentH.GetPaymentStatus)
		r.Get("/users/{userId}/payments", paymentH.ListUserPayments)

		r.Get("/settlements/{id}", paymentH.GetSettlementDetails)
		r.Get("/virtual-accounts/{id}", paymentH.FetchVirtualAccount)
	})

	return r
}
