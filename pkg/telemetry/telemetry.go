// pkg/telemetry/telemetry.go
package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const serviceName = "macsvc"

var (
	tracer   trace.Tracer
	shutdown = func(context.Context) error { return nil }
)

// Init configures OpenTelemetry; call this early in main().
// Spans and metrics are only exported when the user opted in by creating
// ~/.macsvc/telemetry_on. They land in telemetry.jsonl and metrics.jsonl
// under ~/.macsvc/telemetry.
func Init(service string) error {
	if !IsEnabled() {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		setCommandMeter(metricnoop.NewMeterProvider().Meter(service))
		shutdown = func(context.Context) error { return nil }
		return nil
	}

	telemetryDir := filepath.Join(homeDir(), ".macsvc", "telemetry")
	if err := os.MkdirAll(telemetryDir, 0755); err != nil {
		return cerr.Wrap(err, "failed to create telemetry directory")
	}

	telemetryFile := filepath.Join(telemetryDir, "telemetry.jsonl")
	file, err := os.OpenFile(telemetryFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		_ = file.Close()
		return cerr.Wrap(err, "failed to create file exporter")
	}

	res := sdkresource.NewWithAttributes(
		semconv.SchemaURL,
		attribute.String("service.name", service),
		attribute.String("host.name", hostname()),
		attribute.String("macsvc.anon_id", AnonTelemetryID()),
	)

	metricsFile, err := os.OpenFile(filepath.Join(telemetryDir, "metrics.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		_ = file.Close()
		return cerr.Wrap(err, "failed to open metrics file")
	}
	mexp, err := stdoutmetric.New(
		stdoutmetric.WithWriter(metricsFile),
		stdoutmetric.WithoutTimestamps(),
	)
	if err != nil {
		_ = file.Close()
		_ = metricsFile.Close()
		return cerr.Wrap(err, "failed to create metrics exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	// Shutdown performs the final collection.
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(mexp)),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	tracer = tp.Tracer(service)
	setCommandMeter(mp.Meter(service))
	shutdown = func(ctx context.Context) error {
		defer file.Close()
		defer metricsFile.Close()
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	return shutdown(ctx)
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	if tracer == nil {
		tracer = otel.Tracer(serviceName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// IsEnabled reports whether the user opted in to span export.
func IsEnabled() bool {
	_, err := os.Stat(filepath.Join(homeDir(), ".macsvc", "telemetry_on"))
	return err == nil
}

// AnonTelemetryID returns a stable random identifier stored under ~/.macsvc.
func AnonTelemetryID() string {
	path := filepath.Join(homeDir(), ".macsvc", "telemetry_id")
	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		return string(data)
	}
	id := uuid.New().String()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err == nil {
		_ = os.WriteFile(path, []byte(id), 0600)
	}
	return id
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.TempDir()
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
