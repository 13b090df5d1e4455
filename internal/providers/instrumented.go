package providers

import (
	"context"
	"time"

	"github.com/cassiomorais/paygate/internal/domain/payment"
	"github.com/cassiomorais/paygate/internal/envelope"
	"github.com/cassiomorais/paygate/internal/infrastructure/observability"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/cassiomorais/paygate/internal/providers"

// Instrumented decorates a provider with a span, metrics and a log line per
// operation. Results and errors pass through untouched.
type Instrumented struct {
	next    Provider
	metrics *observability.Metrics
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// Instrument wraps next. metrics may be nil.
func Instrument(next Provider, metrics *observability.Metrics, logger zerolog.Logger) *Instrumented {
	return &Instrumented{
		next:    next,
		metrics: metrics,
		logger:  observability.ForProvider(logger, string(next.Name())),
		tracer:  otel.Tracer(tracerName),
	}
}

// Unwrap returns the decorated provider.
func (i *Instrumented) Unwrap() Provider { return i.next }

func (i *Instrumented) Name() Name { return i.next.Name() }

func observe[T any](ctx context.Context, i *Instrumented, operation string, call func(context.Context) (T, error)) (T, error) {
	provider := string(i.next.Name())

	ctx, span := i.tracer.Start(ctx, "gateway."+operation, trace.WithAttributes(
		attribute.String("gateway.provider", provider),
		attribute.String("gateway.operation", operation),
	))
	defer span.End()

	if i.metrics != nil {
		i.metrics.ActiveGatewayRequests.Inc()
		defer i.metrics.ActiveGatewayRequests.Dec()
	}

	start := time.Now()
	result, err := call(ctx)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		env := envelope.FromError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, env.Code)
		span.SetAttributes(attribute.Int("gateway.status", env.Status))

		event := i.logger.Warn()
		if env.Status >= 500 {
			event = i.logger.Error()
		}
		event.Err(err).
			Str("operation", operation).
			Str("code", env.Code).
			Int("status", env.Status).
			Dur("duration", elapsed).
			Msg("Gateway operation failed")

		if i.metrics != nil {
			i.metrics.GatewayErrors.WithLabelValues(provider, operation, env.Code).Inc()
		}
	} else {
		i.logger.Debug().
			Str("operation", operation).
			Dur("duration", elapsed).
			Msg("Gateway operation completed")
	}

	if i.metrics != nil {
		i.metrics.GatewayRequestsTotal.WithLabelValues(provider, operation, outcome).Inc()
		i.metrics.GatewayRequestDuration.WithLabelValues(provider, operation).Observe(elapsed.Seconds())
	}

	return result, err
}

func (i *Instrumented) Charge(ctx context.Context, in payment.ChargeInput) (*payment.ChargeResult, error) {
	return observe(ctx, i, "charge", func(ctx context.Context) (*payment.ChargeResult, error) {
		return i.next.Charge(ctx, in)
	})
}

func (i *Instrumented) Refund(ctx context.Context, in payment.RefundInput) (*payment.RefundResult, error) {
	return observe(ctx, i, "refund", func(ctx context.Context) (*payment.RefundResult, error) {
		return i.next.Refund(ctx, in)
	})
}

func (i *Instrumented) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.PaymentStatusResult, error) {
	return observe(ctx, i, "getPaymentStatus", func(ctx context.Context) (*payment.PaymentStatusResult, error) {
		return i.next.GetPaymentStatus(ctx, paymentID)
	})
}

func (i *Instrumented) ListUserPayments(ctx context.Context, userID string, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	return observe(ctx, i, "listUserPayments", func(ctx context.Context) ([]*payment.ChargeResult, error) {
		return i.next.ListUserPayments(ctx, userID, filter)
	})
}

func (i *Instrumented) ListAllPayments(ctx context.Context, filter *payment.ListPaymentsFilter) ([]*payment.ChargeResult, error) {
	return observe(ctx, i, "listAllPayments", func(ctx context.Context) ([]*payment.ChargeResult, error) {
		return i.next.ListAllPayments(ctx, filter)
	})
}

func (i *Instrumented) GetSettlementDetails(ctx context.Context, settlementID string) (*payment.SettlementDetails, error) {
	return observe(ctx, i, "getSettlementDetails", func(ctx context.Context) (*payment.SettlementDetails, error) {
		return i.next.GetSettlementDetails(ctx, settlementID)
	})
}

func (i *Instrumented) GetRefundStatus(ctx context.Context, refundID string) (*payment.RefundResult, error) {
	return observe(ctx, i, "getRefundStatus", func(ctx context.Context) (*payment.RefundResult, error) {
		return i.next.GetRefundStatus(ctx, refundID)
	})
}

// FetchVirtualAccount delegates when the wrapped gateway supports it.
func (i *Instrumented) FetchVirtualAccount(ctx context.Context, accountID string) (map[string]any, error) {
	fetcher, ok := i.next.(VirtualAccountFetcher)
	if !ok {
		return nil, UnsupportedOperation(i.next.Name(), "fetchVirtualAccount")
	}
	return observe(ctx, i, "fetchVirtualAccount", func(ctx context.Context) (map[string]any, error) {
		return fetcher.FetchVirtualAccount(ctx, accountID)
	})
}
