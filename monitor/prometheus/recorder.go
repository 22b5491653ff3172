package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements the MetricsRecorder interface using Prometheus collectors
type PrometheusRecorder struct {
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
	httpActiveRequests  *prometheus.GaugeVec

	dbQueryDuration *prometheus.HistogramVec
	dbQueriesTotal  *prometheus.CounterVec

	healthChecksTotal *prometheus.CounterVec
	errorsTotal       *prometheus.CounterVec

	buildInfo *prometheus.GaugeVec
	startTime prometheus.Gauge
}

// NewPrometheusRecorder registers all collectors on registerer, the default registerer when nil.
func NewPrometheusRecorder(registerer prometheus.Registerer) *PrometheusRecorder {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusRecorder{
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tsiolkovsky_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"path", "method", "status_code"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsiolkovsky_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),
		httpActiveRequests: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tsiolkovsky_http_active_requests",
				Help: "Number of HTTP requests being served",
			},
			[]string{"path", "method"},
		),
		dbQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tsiolkovsky_store_query_duration_seconds",
				Help:    "Duration of store operations in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation", "table"},
		),
		dbQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsiolkovsky_store_queries_total",
				Help: "Total number of store operations",
			},
			[]string{"operation", "table", "success"},
		),
		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsiolkovsky_health_checks_total",
				Help: "Total number of recorded tool health checks",
			},
			[]string{"health_status"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tsiolkovsky_errors_total",
				Help: "Total number of errors",
			},
			[]string{"error_type", "component"},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "tsiolkovsky_build_info",
				Help: "Build information, always 1",
			},
			[]string{"version", "store_driver", "go_version"},
		),
		startTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "tsiolkovsky_start_time_seconds",
				Help: "Unix time the process started",
			},
		),
	}
}

// RecordHTTPRequest records HTTP request metrics
func (r *PrometheusRecorder) RecordHTTPRequest(startTime time.Time, path, method, statusCode string) {
	r.httpRequestDuration.WithLabelValues(path, method, statusCode).Observe(time.Since(startTime).Seconds())
	r.httpRequestsTotal.WithLabelValues(path, method, statusCode).Inc()
}

// RecordHTTPActiveRequest records active HTTP request metrics
func (r *PrometheusRecorder) RecordHTTPActiveRequest(path, method string, delta float64) {
	r.httpActiveRequests.WithLabelValues(path, method).Add(delta)
}

// RecordDBQuery records store operation metrics
func (r *PrometheusRecorder) RecordDBQuery(startTime time.Time, operation, table string, success bool) {
	r.dbQueryDuration.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())
	r.dbQueriesTotal.WithLabelValues(operation, table, strconv.FormatBool(success)).Inc()
}

// RecordHealthCheck counts an appended health check by reported status
func (r *PrometheusRecorder) RecordHealthCheck(healthStatus string) {
	r.healthChecksTotal.WithLabelValues(healthStatus).Inc()
}

// RecordError records error metrics
func (r *PrometheusRecorder) RecordError(errorType, component string) {
	r.errorsTotal.WithLabelValues(errorType, component).Inc()
}

// InitSystemMetrics publishes build information
func (r *PrometheusRecorder) InitSystemMetrics(version, storeDriver, goVersion string, startTime time.Time) {
	r.buildInfo.WithLabelValues(version, storeDriver, goVersion).Set(1)
	r.startTime.Set(float64(startTime.Unix()))
}
