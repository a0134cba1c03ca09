package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"print-order-service/internal/logging"
	"print-order-service/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestID echoes the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("requestID", rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// RequestLogger attaches a request-scoped logger to the request context,
// logs the finished request and records HTTP metrics.
func RequestLogger(base *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	prop := otel.GetTextMapPropagator()

	return func(c *gin.Context) {
		start := time.Now()
		ctx := prop.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		fields := []zap.Field{zap.String("request_id", c.GetString("requestID"))}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				zap.String("trace_id", sc.TraceID().String()),
				zap.String("span_id", sc.SpanID().String()),
			)
		}
		logger := base.With(fields...)
		c.Request = c.Request.WithContext(logging.ContextWithLogger(ctx, logger))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		m.HTTPRequest(c.Request.Method, route, status, elapsed)

		entry := logging.FromContext(c.Request.Context())
		reqFields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		}
		switch {
		case status >= 500:
			entry.Error("request failed", reqFields...)
		case status >= 400:
			entry.Warn("request rejected", reqFields...)
		default:
			entry.Info("request served", reqFields...)
		}
	}
}
