// pkg/telemetry/metrics.go
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CommandMetrics records external command invocations. Unless telemetry is
// enabled the instruments are no-ops.
type CommandMetrics struct {
	invocations metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

var (
	commandsMu sync.Mutex
	commands   *CommandMetrics
)

// Commands returns the command metrics bound to the provider installed by
// Init, or to the global meter when Init has not run.
func Commands() *CommandMetrics {
	commandsMu.Lock()
	defer commandsMu.Unlock()
	if commands == nil {
		commands = newCommandMetrics(otel.Meter(serviceName))
	}
	return commands
}

func setCommandMeter(meter metric.Meter) {
	commandsMu.Lock()
	commands = newCommandMetrics(meter)
	commandsMu.Unlock()
}

func newCommandMetrics(meter metric.Meter) *CommandMetrics {
	m := &CommandMetrics{}
	// Instrument creation only fails on invalid names; a nil instrument is
	// skipped by Record.
	m.invocations, _ = meter.Int64Counter("macsvc_command_invocations_total",
		metric.WithDescription("External commands executed, by command and sub-command"))
	m.failures, _ = meter.Int64Counter("macsvc_command_failures_total",
		metric.WithDescription("External commands that reported failure"))
	m.duration, _ = meter.Float64Histogram("macsvc_command_duration_seconds",
		metric.WithDescription("Wall time of external commands"),
		metric.WithUnit("s"))
	return m
}

// Record counts one invocation of command sub.
func (m *CommandMetrics) Record(ctx context.Context, command, sub string, elapsed time.Duration, failed bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("sub_command", sub),
	)
	if m.invocations != nil {
		m.invocations.Add(ctx, 1, attrs)
	}
	if failed && m.failures != nil {
		m.failures.Add(ctx, 1, attrs)
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}
