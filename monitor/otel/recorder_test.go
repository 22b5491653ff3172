package otel

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestOtelRecorder_Records(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	r, err := NewOtelRecorderWithMeter(provider.Meter("test"))
	require.NoError(t, err)

	r.RecordHTTPRequest(time.Now(), "/tools", "POST", "201")
	r.RecordDBQuery(time.Now(), "insert", "tools", true)
	r.RecordHealthCheck("down")
	r.RecordError("validation_error", "controller")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			names[m.Name] = true
		}
	}
	for _, want := range []string{
		"tsiolkovsky_http_requests_total",
		"tsiolkovsky_store_queries_total",
		"tsiolkovsky_health_checks_total",
		"tsiolkovsky_errors_total",
	} {
		require.True(t, names[want], "missing metric %s", want)
	}
}
