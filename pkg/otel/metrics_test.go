package otel_test

import (
	"context"
	"sync"
	"testing"

	"github.com/easyops/agentmem-go/pkg/otel"
)

func TestInMemoryMetrics_Counter(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	counter := metrics.Counter("test_counter")

	ctx := context.Background()
	counter.Add(ctx, 5)
	counter.Add(ctx, 3)

	if value := metrics.GetCounterValue("test_counter"); value != 8 {
		t.Fatalf("expected counter value 8, got %d", value)
	}
}

func TestInMemoryMetrics_SameInstrumentReturned(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()

	metrics.Counter("c").Add(ctx, 1)
	metrics.Counter("c").Add(ctx, 1)

	if value := metrics.GetCounterValue("c"); value != 2 {
		t.Fatalf("expected shared counter value 2, got %d", value)
	}
}

func TestInMemoryMetrics_Histogram(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	hist := metrics.Histogram("test_hist")

	ctx := context.Background()
	hist.Record(ctx, 1.5)
	hist.Record(ctx, 2.5)

	values := metrics.GetHistogramValues("test_hist")
	if len(values) != 2 || values[0] != 1.5 || values[1] != 2.5 {
		t.Fatalf("expected recorded values [1.5 2.5], got %v", values)
	}
}

func TestInMemoryMetrics_Gauge(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	gauge := metrics.Gauge("test_gauge")

	ctx := context.Background()
	gauge.Set(ctx, 10)
	gauge.Set(ctx, 42)

	if value := metrics.GetGaugeValue("test_gauge"); value != 42 {
		t.Fatalf("expected last gauge value 42, got %v", value)
	}
}

func TestInMemoryMetrics_GetNonExistent(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()

	if value := metrics.GetCounterValue("missing"); value != 0 {
		t.Fatalf("expected 0 for missing counter, got %d", value)
	}
	if values := metrics.GetHistogramValues("missing"); values != nil {
		t.Fatalf("expected nil for missing histogram, got %v", values)
	}
}

func TestInMemoryMetrics_ConcurrentAccess(t *testing.T) {
	metrics := otel.NewInMemoryMetrics()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				metrics.Counter("concurrent").Add(ctx, 1)
			}
		}()
	}
	wg.Wait()

	if value := metrics.GetCounterValue("concurrent"); value != 1000 {
		t.Fatalf("expected counter value 1000, got %d", value)
	}
}

func TestNoopMetrics(t *testing.T) {
	metrics := otel.NewNoopMetrics()
	ctx := context.Background()

	// 所有操作都应安全无副作用
	metrics.Counter("c").Add(ctx, 1)
	metrics.Histogram("h").Record(ctx, 1.0)
	metrics.Gauge("g").Set(ctx, 1.0)
}

func TestNewAttr(t *testing.T) {
	attr := otel.NewAttr("key", "value")
	if attr.Key != "key" || attr.Value != "value" {
		t.Fatalf("unexpected attr: %+v", attr)
	}
}
