package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// TestSetupTracing_DisabledWithoutEndpoint verifies that tracing stays on the
// no-op provider when no OTLP endpoint is configured.
func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	tr, err := SetupTracing(context.Background(), "city-weather")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}
	if tr != nil {
		t.Fatalf("SetupTracing() = %v, want nil when disabled", tr)
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil Tracing error = %v", err)
	}
}

// TestSetupTracing_EnabledWithEndpoint verifies that an endpoint installs an SDK provider.
func TestSetupTracing_EnabledWithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:4318")
	t.Setenv("OTEL_SERVICE_NAME", "")
	defer otel.SetTracerProvider(tracenoop.NewTracerProvider())

	tr, err := SetupTracing(context.Background(), "city-weather")
	if err != nil {
		t.Fatalf("SetupTracing() error = %v", err)
	}
	if tr == nil {
		t.Fatal("SetupTracing() = nil, want provider when endpoint is set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
