package monitor

import (
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
	"github.com/fyodorov-ai/tsiolkovsky/monitor/otel"
	"github.com/fyodorov-ai/tsiolkovsky/monitor/prometheus"
)

// InitMonitoring initializes all monitoring components
func InitMonitoring(version, goVersion string, startTime time.Time) error {
	var recorders []metrics.MetricsRecorder

	// Set up the Prometheus recorder if enabled
	if config.EnablePrometheusMetrics {
		recorders = append(recorders, prometheus.NewPrometheusRecorder(nil))
	}

	// Set up the OpenTelemetry recorder if enabled
	if config.OpenTelemetryEnabled {
		otelRecorder, err := otel.NewOtelRecorder()
		if err != nil {
			return errors.Wrap(err, "create OpenTelemetry recorder")
		}
		recorders = append(recorders, otelRecorder)
	}

	switch len(recorders) {
	case 0:
		metrics.GlobalRecorder = &metrics.NoOpRecorder{}
		return nil
	case 1:
		metrics.GlobalRecorder = recorders[0]
	default:
		metrics.GlobalRecorder = &metrics.MultiRecorder{Recorders: recorders}
	}

	metrics.GlobalRecorder.InitSystemMetrics(version, config.StoreDriver, goVersion, startTime)
	return nil
}
