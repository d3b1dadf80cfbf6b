package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) (metricdata.Metrics, bool) {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestInitializeMetrics(t *testing.T) {
	t.Run("initializes all metric instruments successfully", func(t *testing.T) {
		metrics, _ := newTestMetrics(t)

		if metrics.ordersPlacedTotal == nil {
			t.Error("ordersPlacedTotal is nil")
		}
		if metrics.orderPlacementDuration == nil {
			t.Error("orderPlacementDuration is nil")
		}
		if metrics.ordersExpiredTotal == nil {
			t.Error("ordersExpiredTotal is nil")
		}
		if metrics.expirySweepDuration == nil {
			t.Error("expirySweepDuration is nil")
		}
		if metrics.compensationsTotal == nil {
			t.Error("compensationsTotal is nil")
		}
	})
}

func TestRecordOrderPlaced(t *testing.T) {
	t.Run("records placements per status with duration", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordOrderPlaced(ctx, true, 0.05)
		metrics.RecordOrderPlaced(ctx, false, 0.10)

		rm := collect(t, reader)

		m, found := findMetric(rm, "orders_placed_total")
		if !found {
			t.Fatal("orders_placed_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 2 {
			t.Errorf("Expected 2 data points, got %d", len(sum.DataPoints))
		}

		m, found = findMetric(rm, "order_placement_duration_seconds")
		if !found {
			t.Fatal("order_placement_duration_seconds metric not found")
		}
		histogram, ok := m.Data.(metricdata.Histogram[float64])
		if !ok {
			t.Fatal("Expected Histogram[float64] data type")
		}
		if len(histogram.DataPoints) != 1 || histogram.DataPoints[0].Count != 2 {
			t.Errorf("Expected single data point with count=2, got %+v", histogram.DataPoints)
		}
	})
}

func TestRecordExpirySweep(t *testing.T) {
	t.Run("splits expired and failed counts", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordExpirySweep(ctx, 3, 1, 0.4)

		rm := collect(t, reader)

		m, found := findMetric(rm, "orders_expired_total")
		if !found {
			t.Fatal("orders_expired_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 2 {
			t.Errorf("Expected 2 data points, got %d", len(sum.DataPoints))
		}

		var total int64
		for _, dp := range sum.DataPoints {
			total += dp.Value
		}
		if total != 4 {
			t.Errorf("Expected 4 orders counted, got %d", total)
		}
	})

	t.Run("omits the failed series when nothing failed", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)

		metrics.RecordExpirySweep(context.Background(), 2, 0, 0.1)

		rm := collect(t, reader)

		m, found := findMetric(rm, "orders_expired_total")
		if !found {
			t.Fatal("orders_expired_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 1 {
			t.Errorf("Expected 1 data point, got %d", len(sum.DataPoints))
		}
	})
}

func TestRecordCompensation(t *testing.T) {
	t.Run("records reversed and partial outcomes", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()

		metrics.RecordCompensation(ctx, true)
		metrics.RecordCompensation(ctx, false)

		rm := collect(t, reader)

		m, found := findMetric(rm, "order_compensations_total")
		if !found {
			t.Fatal("order_compensations_total metric not found")
		}
		sum, ok := m.Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("Expected Sum[int64] data type")
		}
		if len(sum.DataPoints) != 2 {
			t.Errorf("Expected 2 data points, got %d", len(sum.DataPoints))
		}
	})
}
