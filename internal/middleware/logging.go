package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the correlation id. A client-supplied value is kept;
// otherwise one is generated.
const RequestIDHeader = "X-Request-ID"

const tracerName = "github.com/sakif/employee-service/internal/middleware"

// responseWriter wraps http.ResponseWriter to capture what was sent.
// http.ResponseWriter doesn't expose the status after WriteHeader is called.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Observer records one span and one completion log line per request.
type Observer struct {
	logger *slog.Logger
	tracer trace.Tracer
}

// Observe returns the observability stage. tp may be nil to use the global
// tracer provider.
func Observe(logger *slog.Logger, tp trace.TracerProvider) *Observer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Observer{logger: logger, tracer: tp.Tracer(tracerName)}
}

// Handle starts the span before anything downstream runs and ends it exactly
// once in a deferred call. When downstream panics the deferred call still
// runs: the span is closed with status 500 and the panic keeps unwinding to
// the fault-isolation stage.
func (o *Observer) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	start := time.Now()

	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = xid.New().String()
	}
	w.Header().Set(RequestIDHeader, requestID)

	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := o.tracer.Start(ctx, r.Method+" "+r.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("url.path", r.URL.Path),
			attribute.String("request.id", requestID),
		),
	)

	o.logger.InfoContext(ctx, "request started",
		slog.String("method", r.Method),
		slog.String("uri", r.URL.RequestURI()),
		slog.String("request_id", requestID),
	)

	wrapped := newResponseWriter(w)
	completed := false

	defer func() {
		status := wrapped.statusCode
		if !completed {
			status = http.StatusInternalServerError
			span.SetStatus(codes.Error, "unrecovered fault")
		} else if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		route := routePattern(r)
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		span.End()

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		o.logger.LogAttrs(ctx, level, "request completed",
			slog.String("method", r.Method),
			slog.String("uri", r.URL.RequestURI()),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.Int64("bytes", wrapped.written),
			slog.String("request_id", requestID),
		)
	}()

	next.ServeHTTP(wrapped, r.WithContext(ctx))
	completed = true
}

// routePattern is the matched chi pattern (e.g. /employee/users/{id}), or the
// raw path when routing never matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
