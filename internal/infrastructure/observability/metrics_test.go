package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("paygate", reg)

	m.GatewayRequestsTotal.WithLabelValues("razorpay", "charge", "success").Inc()
	m.GatewayErrors.WithLabelValues("stripe", "refund", "STRIPE_REFUND_ERROR").Inc()
	m.CircuitBreakerState.WithLabelValues("cashfree").Set(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["paygate_gateway_requests_total"])
	assert.True(t, names["paygate_gateway_errors_total"])
	assert.True(t, names["paygate_circuit_breaker_state"])

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("cashfree")))
}

func TestNewMetrics_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewMetrics("paygate", reg)

	assert.Panics(t, func() { NewMetrics("paygate", reg) })
}
