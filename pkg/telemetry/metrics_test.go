package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestCommandMetricsRecord(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(ctx) }()

	m := newCommandMetrics(provider.Meter("test"))
	m.Record(ctx, "launchctl", "list", 10*time.Millisecond, false)
	m.Record(ctx, "launchctl", "bootstrap", 20*time.Millisecond, true)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	totals := map[string]int64{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		sum, ok := md.Data.(metricdata.Sum[int64])
		if !ok {
			continue
		}
		for _, dp := range sum.DataPoints {
			totals[md.Name] += dp.Value
		}
	}
	assert.Equal(t, int64(2), totals["macsvc_command_invocations_total"])
	assert.Equal(t, int64(1), totals["macsvc_command_failures_total"])
}

func TestCommandMetricsNilSafe(t *testing.T) {
	var m *CommandMetrics
	assert.NotPanics(t, func() {
		m.Record(context.Background(), "launchctl", "list", time.Millisecond, false)
	})
	assert.NotNil(t, Commands())
}
