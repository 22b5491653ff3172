package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
)

func TestInitMonitoring_DisabledFallsBackToNoOp(t *testing.T) {
	prom, otelEnabled := config.EnablePrometheusMetrics, config.OpenTelemetryEnabled
	t.Cleanup(func() {
		config.EnablePrometheusMetrics, config.OpenTelemetryEnabled = prom, otelEnabled
		metrics.GlobalRecorder = &metrics.NoOpRecorder{}
	})

	config.EnablePrometheusMetrics = false
	config.OpenTelemetryEnabled = false

	require.NoError(t, InitMonitoring("v0.0.0-test", "go1.26", time.Now()))
	require.IsType(t, &metrics.NoOpRecorder{}, metrics.GlobalRecorder)
}

func TestInitMonitoring_OpenTelemetryOnly(t *testing.T) {
	prom, otelEnabled := config.EnablePrometheusMetrics, config.OpenTelemetryEnabled
	t.Cleanup(func() {
		config.EnablePrometheusMetrics, config.OpenTelemetryEnabled = prom, otelEnabled
		metrics.GlobalRecorder = &metrics.NoOpRecorder{}
	})

	config.EnablePrometheusMetrics = false
	config.OpenTelemetryEnabled = true

	require.NoError(t, InitMonitoring("v0.0.0-test", "go1.26", time.Now()))
	require.NotNil(t, metrics.GlobalRecorder)
	_, isNoOp := metrics.GlobalRecorder.(*metrics.NoOpRecorder)
	require.False(t, isNoOp)
}
