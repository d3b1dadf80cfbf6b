package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	ordersPlacedTotal      metric.Int64Counter
	orderPlacementDuration metric.Float64Histogram
	ordersExpiredTotal     metric.Int64Counter
	expirySweepDuration    metric.Float64Histogram
	compensationsTotal     metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.ordersPlacedTotal, err = meter.Int64Counter(
		"orders_placed_total",
		metric.WithDescription("Total number of order placement attempts"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_placed_total counter: %w", err)
	}

	m.orderPlacementDuration, err = meter.Float64Histogram(
		"order_placement_duration_seconds",
		metric.WithDescription("Duration of order placement operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_placement_duration histogram: %w", err)
	}

	m.ordersExpiredTotal, err = meter.Int64Counter(
		"orders_expired_total",
		metric.WithDescription("Orders cancelled by the expiry sweep"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create orders_expired_total counter: %w", err)
	}

	m.expirySweepDuration, err = meter.Float64Histogram(
		"order_expiry_sweep_duration_seconds",
		metric.WithDescription("Duration of expiry sweeps"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_expiry_sweep_duration histogram: %w", err)
	}

	m.compensationsTotal, err = meter.Int64Counter(
		"order_compensations_total",
		metric.WithDescription("Compensation runs after failed expiry attempts"),
		metric.WithUnit("{compensation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create order_compensations_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOrderPlaced(ctx context.Context, success bool, durationSeconds float64) {
	status := "success"
	if !success {
		status = "error"
	}
	m.ordersPlacedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
	m.orderPlacementDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordExpirySweep(ctx context.Context, expired, failed int, durationSeconds float64) {
	m.ordersExpiredTotal.Add(ctx, int64(expired), metric.WithAttributes(
		attribute.String("status", "expired"),
	))
	if failed > 0 {
		m.ordersExpiredTotal.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("status", "failed"),
		))
	}
	m.expirySweepDuration.Record(ctx, durationSeconds)
}

func (m *Metrics) RecordCompensation(ctx context.Context, fullyReversed bool) {
	outcome := "reversed"
	if !fullyReversed {
		outcome = "partial"
	}
	m.compensationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
