package otel

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OtelRecorder implements the MetricsRecorder interface using OpenTelemetry
type OtelRecorder struct {
	meter metric.Meter

	// HTTP metrics
	httpRequestDuration metric.Float64Histogram
	httpRequestsTotal   metric.Int64Counter
	httpActiveRequests  metric.Float64UpDownCounter

	// Store metrics
	dbQueryDuration metric.Float64Histogram
	dbQueriesTotal  metric.Int64Counter

	healthChecksTotal metric.Int64Counter

	// Error metrics
	errorsTotal metric.Int64Counter

	buildInfo metric.Int64Gauge
}

// NewOtelRecorder creates a new OtelRecorder on the global meter provider
func NewOtelRecorder() (*OtelRecorder, error) {
	return NewOtelRecorderWithMeter(otel.Meter("tsiolkovsky"))
}

// NewOtelRecorderWithMeter creates a new OtelRecorder on the given meter
func NewOtelRecorderWithMeter(meter metric.Meter) (*OtelRecorder, error) {
	r := &OtelRecorder{meter: meter}

	var err error
	// HTTP metrics
	if r.httpRequestDuration, err = meter.Float64Histogram("tsiolkovsky_http_request_duration_seconds", metric.WithDescription("Duration of HTTP requests in seconds")); err != nil {
		return nil, err
	}
	if r.httpRequestsTotal, err = meter.Int64Counter("tsiolkovsky_http_requests_total", metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, err
	}
	if r.httpActiveRequests, err = meter.Float64UpDownCounter("tsiolkovsky_http_active_requests", metric.WithDescription("Number of active HTTP requests")); err != nil {
		return nil, err
	}

	// Store metrics
	if r.dbQueryDuration, err = meter.Float64Histogram("tsiolkovsky_store_query_duration_seconds", metric.WithDescription("Duration of store operations in seconds")); err != nil {
		return nil, err
	}
	if r.dbQueriesTotal, err = meter.Int64Counter("tsiolkovsky_store_queries_total", metric.WithDescription("Total number of store operations")); err != nil {
		return nil, err
	}

	if r.healthChecksTotal, err = meter.Int64Counter("tsiolkovsky_health_checks_total", metric.WithDescription("Total number of recorded tool health checks")); err != nil {
		return nil, err
	}

	// Error metrics
	if r.errorsTotal, err = meter.Int64Counter("tsiolkovsky_errors_total", metric.WithDescription("Total number of errors")); err != nil {
		return nil, err
	}

	if r.buildInfo, err = meter.Int64Gauge("tsiolkovsky_build_info", metric.WithDescription("Build information, always 1")); err != nil {
		return nil, err
	}

	return r, nil
}

// RecordHTTPRequest records HTTP request metrics
func (r *OtelRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	ctx := context.Background()
	duration := time.Since(startTime).Seconds()
	attrs := []attribute.KeyValue{
		attribute.String("path", path),
		attribute.String("method", method),
		attribute.String("status_code", statusCode),
	}
	r.httpRequestDuration.Record(ctx, duration, metric.WithAttributes(attrs...))
	r.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHTTPActiveRequest records active HTTP request metrics
func (r *OtelRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {
	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("path", path),
		attribute.String("method", method),
	}
	r.httpActiveRequests.Add(ctx, delta, metric.WithAttributes(attrs...))
}

// RecordDBQuery records store operation metrics
func (r *OtelRecorder) RecordDBQuery(startTime time.Time, operation, table string, success bool) {
	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.String("table", table),
		attribute.String("success", strconv.FormatBool(success)),
	}
	r.dbQueryDuration.Record(ctx, time.Since(startTime).Seconds(), metric.WithAttributes(attrs...))
	r.dbQueriesTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordHealthCheck counts an appended health check by reported status
func (r *OtelRecorder) RecordHealthCheck(healthStatus string) {
	r.healthChecksTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.String("health_status", healthStatus)))
}

// RecordError records error metrics
func (r *OtelRecorder) RecordError(errorType, component string) {
	ctx := context.Background()
	attrs := []attribute.KeyValue{
		attribute.String("error_type", errorType),
		attribute.String("component", component),
	}
	r.errorsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// InitSystemMetrics publishes build information
func (r *OtelRecorder) InitSystemMetrics(version, storeDriver, goVersion string, startTime time.Time) {
	r.buildInfo.Record(context.Background(), 1, metric.WithAttributes(
		attribute.String("version", version),
		attribute.String("store_driver", storeDriver),
		attribute.String("go_version", goVersion),
		attribute.Int64("start_time", startTime.Unix()),
	))
}
