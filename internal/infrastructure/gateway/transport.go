// Package gateway builds the outbound HTTP stack shared by every payment
// gateway client: tracing, a per-gateway circuit breaker and a timeout.
package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	domainErrors "github.com/cassiomorais/paygate/internal/domain/errors"
	"github.com/cassiomorais/paygate/internal/infrastructure/observability"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// BreakerSettings configures the per-gateway circuit breaker.
type BreakerSettings struct {
	MaxRequests  uint32        `mapstructure:"max_requests"`
	Interval     time.Duration `mapstructure:"interval"`
	Timeout      time.Duration `mapstructure:"timeout"`
	MinRequests  uint32        `mapstructure:"min_requests"`
	FailureRatio float64       `mapstructure:"failure_ratio"`
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  10,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// ClientConfig describes the HTTP client for one gateway.
type ClientConfig struct {
	Name    string
	Timeout time.Duration
	Breaker BreakerSettings
	// Base is the innermost transport. Defaults to http.DefaultTransport.
	Base    http.RoundTripper
	Metrics *observability.Metrics
	Logger  zerolog.Logger
}

// NewHTTPClient returns a client whose requests are traced and pass through
// the gateway's circuit breaker.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: NewBreakerTransport(cfg, otelhttp.NewTransport(base)),
	}
}

// errServerStatus marks a 5xx response as a breaker failure. The response
// itself still reaches the caller.
var errServerStatus = errors.New("gateway server error")

// BreakerTransport is an http.RoundTripper guarded by a circuit breaker.
// Transport errors and 5xx responses count as failures.
type BreakerTransport struct {
	name    string
	next    http.RoundTripper
	cb      *gobreaker.CircuitBreaker[*http.Response]
	metrics *observability.Metrics
}

func NewBreakerTransport(cfg ClientConfig, next http.RoundTripper) *BreakerTransport {
	s := cfg.Breaker
	if s == (BreakerSettings{}) {
		s = DefaultBreakerSettings()
	}
	logger := cfg.Logger
	metrics := cfg.Metrics

	t := &BreakerTransport{name: cfg.Name, next: next, metrics: metrics}
	t.cb = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			if metrics != nil {
				metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			}
		},
	})
	return t
}

// State reports the breaker's current state.
func (t *BreakerTransport) State() gobreaker.State {
	return t.cb.State()
}

func (t *BreakerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errServerStatus
		}
		return resp, nil
	})

	switch {
	case err == nil:
		t.observe("success")
		return resp, nil
	case errors.Is(err, errServerStatus):
		t.observe("failure")
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		t.observe("rejected")
		return nil, fmt.Errorf("%w: %s: %w", domainErrors.ErrGatewayUnavailable, t.name, err)
	default:
		t.observe("failure")
		return nil, err
	}
}

func (t *BreakerTransport) observe(result string) {
	if t.metrics != nil {
		t.metrics.CircuitBreakerRequests.WithLabelValues(t.name, result).Inc()
	}
}
