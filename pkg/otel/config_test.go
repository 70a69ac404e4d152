package otel_test

import (
	"errors"
	"testing"
	"time"

	"github.com/easyops/agentmem-go/pkg/otel"
)

func TestDefaultConfig(t *testing.T) {
	cfg := otel.DefaultConfig()

	if cfg.Enabled {
		t.Fatal("expected observability disabled by default")
	}
	if cfg.ServiceName != "agentmem" {
		t.Fatalf("expected service name agentmem, got %q", cfg.ServiceName)
	}
	if cfg.Tracing.Exporter != string(otel.ExporterOTLPGRPC) {
		t.Fatalf("expected otlp-grpc default exporter, got %q", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Fatalf("expected sample rate 1.0, got %v", cfg.Tracing.SampleRate)
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := otel.Config{
		ServiceName: "custom",
	}.WithDefaults()

	if cfg.ServiceName != "custom" {
		t.Fatalf("expected explicit value kept, got %q", cfg.ServiceName)
	}
	if cfg.Environment == "" {
		t.Fatal("expected default environment filled in")
	}
	if cfg.Tracing.Endpoint == "" {
		t.Fatal("expected default tracing endpoint filled in")
	}
	if cfg.Metrics.Interval != 60*time.Second {
		t.Fatalf("expected default metrics interval, got %v", cfg.Metrics.Interval)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	cfg := otel.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config valid, got %v", err)
	}

	cfg.Tracing.SampleRate = 1.5
	if err := cfg.Validate(); !errors.Is(err, otel.ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}

	cfg.Tracing.SampleRate = -0.1
	if err := cfg.Validate(); !errors.Is(err, otel.ErrInvalidSampleRate) {
		t.Fatalf("expected ErrInvalidSampleRate, got %v", err)
	}
}

func TestProvider_Disabled(t *testing.T) {
	p, err := otel.NewProvider(otel.Config{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Tracer() == nil || p.Metrics() == nil || p.Logger() == nil {
		t.Fatal("expected noop implementations, not nil")
	}
}

func TestGlobalAccessors_WithoutProvider(t *testing.T) {
	// 未设置全局提供者时返回空实现而非 nil
	if otel.GetTracer() == nil {
		t.Fatal("expected noop tracer")
	}
	if otel.GetMetrics() == nil {
		t.Fatal("expected noop metrics")
	}
	if otel.GetLogger() == nil {
		t.Fatal("expected noop logger")
	}
}
