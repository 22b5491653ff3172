package telemetry

import (
	"context"
	stdErrors "errors"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fyodorov-ai/tsiolkovsky/common"
	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
)

const metricExportInterval = 15 * time.Second

// Resource attributes naming the store a process serves from.
const (
	StoreDriverKey = attribute.Key("tsiolkovsky.store.driver")
	DBSystemKey    = attribute.Key("db.system")
)

// Backend is the store a process serves from.
type Backend interface {
	Driver() string
	Dialect() string
}

// Providers holds the tracer and meter providers so they can be flushed on exit.
type Providers struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
}

// InitOpenTelemetry installs global tracer and meter providers exporting over
// OTLP/HTTP. Every span and metric carries the backend's driver and database
// system. It returns nil providers when OpenTelemetry is disabled.
func InitOpenTelemetry(ctx context.Context, backend Backend) (*Providers, error) {
	if !config.OpenTelemetryEnabled {
		return nil, nil
	}
	if config.OpenTelemetryEndpoint == "" {
		return nil, errors.New("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is true")
	}

	res, err := NewResource(ctx, backend)
	if err != nil {
		return nil, errors.Wrap(err, "build OpenTelemetry resource")
	}

	traceOpts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(config.OpenTelemetryEndpoint),
		otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
	}
	metricOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.OpenTelemetryEndpoint),
		otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
	}
	if config.OpenTelemetryInsecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create OTLP trace exporter")
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, errors.Wrap(err, "create OTLP metric exporter")
	}

	p := &Providers{
		tracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExporter),
			sdktrace.WithResource(res),
		),
		meterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
				sdkmetric.WithInterval(metricExportInterval))),
			sdkmetric.WithResource(res),
		),
	}
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetMeterProvider(p.meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Logger.Info("OpenTelemetry initialized",
		zap.String("endpoint", config.OpenTelemetryEndpoint),
		zap.Bool("insecure", config.OpenTelemetryInsecure),
		zap.String("service", config.OpenTelemetryServiceName),
		zap.String("environment", config.OpenTelemetryEnvironment),
		zap.String("store_driver", backend.Driver()),
		zap.String("dialect", backend.Dialect()),
	)
	return p, nil
}

// Shutdown flushes pending spans and metrics.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var errs []error
	if err := p.meterProvider.Shutdown(ctx); err != nil {
		errs = append(errs, errors.Wrap(err, "shutdown meter provider"))
	}
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		errs = append(errs, errors.Wrap(err, "shutdown tracer provider"))
	}
	if len(errs) > 0 {
		return errors.Wrap(stdErrors.Join(errs...), "shutdown OpenTelemetry providers")
	}
	return nil
}

// NewResource describes this process: service identity, deployment
// environment and the store backend. Attributes from OTEL_RESOURCE_ATTRIBUTES
// are kept unless they name the same key.
func NewResource(ctx context.Context, backend Backend) (*sdkresource.Resource, error) {
	attrs := []attribute.KeyValue{
		attribute.String("service.name", config.OpenTelemetryServiceName),
		attribute.String("service.version", common.Version),
	}
	if config.OpenTelemetryEnvironment != "" {
		attrs = append(attrs, attribute.String("deployment.environment", config.OpenTelemetryEnvironment))
	}
	if backend != nil {
		attrs = append(attrs, StoreDriverKey.String(backend.Driver()))
		if system := dbSystem(backend.Dialect()); system != "" {
			attrs = append(attrs, DBSystemKey.String(system))
		}
	}

	res, err := sdkresource.New(ctx,
		sdkresource.WithFromEnv(),
		sdkresource.WithHost(),
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithProcess(),
		sdkresource.WithAttributes(attrs...),
	)
	// process detectors may fail in minimal containers, the rest is still usable
	if err != nil && !errors.Is(err, sdkresource.ErrPartialResource) {
		return nil, err
	}
	return res, nil
}

// dbSystem maps a store dialect to the db.system semantic convention value.
func dbSystem(dialect string) string {
	switch dialect {
	case "postgres":
		return "postgresql"
	case "mysql", "sqlite":
		return dialect
	default:
		return ""
	}
}
