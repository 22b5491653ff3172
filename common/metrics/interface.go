package metrics

import (
	"time"
)

// MetricsRecorder defines the interface for recording metrics
type MetricsRecorder interface {
	// HTTP metrics
	RecordHTTPRequest(startTime time.Time, path, method, statusCode string)
	RecordHTTPActiveRequest(path, method string, delta float64)

	// Store metrics
	RecordDBQuery(startTime time.Time, operation, table string, success bool)

	// Health check metrics
	RecordHealthCheck(healthStatus string)

	// Error metrics
	RecordError(errorType, component string)

	// System metrics
	InitSystemMetrics(version, storeDriver, goVersion string, startTime time.Time)
}

// GlobalRecorder holds the active metrics recorder implementation.
var GlobalRecorder MetricsRecorder

// NoOpRecorder is a no-operation implementation for when metrics are disabled
type NoOpRecorder struct{}

// RecordHTTPRequest implements MetricsRecorder.RecordHTTPRequest without collecting any data.
func (n *NoOpRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {}

// RecordHTTPActiveRequest implements MetricsRecorder.RecordHTTPActiveRequest without collecting any data.
func (n *NoOpRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {}

// RecordDBQuery implements MetricsRecorder.RecordDBQuery without collecting any data.
func (n *NoOpRecorder) RecordDBQuery(startTime time.Time, operation, table string, success bool) {}

// RecordHealthCheck implements MetricsRecorder.RecordHealthCheck without collecting any data.
func (n *NoOpRecorder) RecordHealthCheck(healthStatus string) {}

// RecordError implements MetricsRecorder.RecordError without collecting any data.
func (n *NoOpRecorder) RecordError(errorType, component string) {}

// InitSystemMetrics implements MetricsRecorder.InitSystemMetrics without collecting any data.
func (n *NoOpRecorder) InitSystemMetrics(version, storeDriver, goVersion string, startTime time.Time) {
}

// Initialize with no-op recorder by default
func init() {
	GlobalRecorder = &NoOpRecorder{}
}

// MultiRecorder wraps multiple MetricsRecorder implementations
type MultiRecorder struct {
	Recorders []MetricsRecorder
}

// RecordHTTPRequest implements MetricsRecorder.RecordHTTPRequest
func (m *MultiRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	for _, r := range m.Recorders {
		r.RecordHTTPRequest(startTime, path, method, statusCode)
	}
}

// RecordHTTPActiveRequest implements MetricsRecorder.RecordHTTPActiveRequest
func (m *MultiRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {
	for _, r := range m.Recorders {
		r.RecordHTTPActiveRequest(path, method, delta)
	}
}

// RecordDBQuery implements MetricsRecorder.RecordDBQuery
func (m *MultiRecorder) RecordDBQuery(startTime time.Time, operation, table string, success bool) {
	for _, r := range m.Recorders {
		r.RecordDBQuery(startTime, operation, table, success)
	}
}

// RecordHealthCheck implements MetricsRecorder.RecordHealthCheck
func (m *MultiRecorder) RecordHealthCheck(healthStatus string) {
	for _, r := range m.Recorders {
		r.RecordHealthCheck(healthStatus)
	}
}

// RecordError implements MetricsRecorder.RecordError
func (m *MultiRecorder) RecordError(errorType, component string) {
	for _, r := range m.Recorders {
		r.RecordError(errorType, component)
	}
}

// InitSystemMetrics implements MetricsRecorder.InitSystemMetrics
func (m *MultiRecorder) InitSystemMetrics(version, storeDriver, goVersion string, startTime time.Time) {
	for _, r := range m.Recorders {
		r.InitSystemMetrics(version, storeDriver, goVersion, startTime)
	}
}
