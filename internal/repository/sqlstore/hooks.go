package sqlstore

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Hook observes every statement sent to the database.
// Implementations must be goroutine-safe and should not block.
type Hook interface {
	BeforeQuery(ctx context.Context, query string, args []any)
	AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error)
}

type hookChain struct {
	hooks []Hook
}

func newHookChain(hooks []Hook) hookChain {
	filtered := make([]Hook, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return hookChain{hooks: filtered}
}

func (c hookChain) Before(ctx context.Context, query string, args []any) {
	for _, h := range c.hooks {
		h.BeforeQuery(ctx, query, args)
	}
}

func (c hookChain) After(ctx context.Context, query string, args []any, d time.Duration, err error) {
	for _, h := range c.hooks {
		h.AfterQuery(ctx, query, args, d, err)
	}
}

// LogHook writes one Debug record per statement, Warn when it failed.
// Bound values are never logged.
type LogHook struct {
	Logger *slog.Logger
}

func (h LogHook) BeforeQuery(context.Context, string, []any) {}

func (h LogHook) AfterQuery(ctx context.Context, query string, args []any, d time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("query", compact(query)),
		slog.Int("args", len(args)),
		slog.Duration("duration", d),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		h.Logger.LogAttrs(ctx, slog.LevelWarn, "query failed", attrs...)
		return
	}
	h.Logger.LogAttrs(ctx, slog.LevelDebug, "query", attrs...)
}

// TraceHook records each statement as a client span under the request span.
type TraceHook struct {
	tracer trace.Tracer
}

// NewTraceHook uses tp, or the global provider when tp is nil.
func NewTraceHook(tp trace.TracerProvider) *TraceHook {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TraceHook{tracer: tp.Tracer("github.com/sakif/employee-service/internal/repository/sqlstore")}
}

func (h *TraceHook) BeforeQuery(context.Context, string, []any) {}

func (h *TraceHook) AfterQuery(ctx context.Context, query string, _ []any, d time.Duration, err error) {
	end := time.Now()
	_, span := h.tracer.Start(ctx, "db.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attribute.String("db.query.text", compact(query))),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End(trace.WithTimestamp(end))
}

// compact collapses whitespace so multi-line SQL logs on one line.
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
