package tracing

import (
	"context"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/fyodorov-ai/tsiolkovsky/common/logger"
)

// otelTraceIDFromContext extracts the OpenTelemetry trace ID from a context when available.
func otelTraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		return spanCtx.TraceID().String()
	}

	return ""
}

// GetTraceID extracts the per-request TraceID from gin context using gin-middlewares.
func GetTraceID(c *gin.Context) string {
	traceID, err := gmw.TraceID(c)
	if err != nil {
		gmw.GetLogger(c).Warn("failed to get trace ID from gin-middlewares", zap.Error(err))
		return ""
	}
	return traceID.String()
}

// GetTraceIDFromContext extracts the per-request TraceID from a standard context.
// Without an embedded gin.Context it falls back to the OpenTelemetry trace id.
func GetTraceIDFromContext(ctx context.Context) string {
	if ginCtx, ok := gmw.GetGinCtxFromStdCtx(ctx); ok {
		return GetTraceID(ginCtx)
	}
	if traceID := otelTraceIDFromContext(ctx); traceID != "" {
		return traceID
	}
	logger.FromContext(ctx).Debug("no trace id available in context")
	return ""
}
