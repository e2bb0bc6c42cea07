// Package reporter forwards fatal run errors to an error tracking backend.
package reporter

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/TheStalwart/phoronix-rss-augmented/reporter"

// Reporter records a fatal error together with descriptive attributes.
type Reporter interface {
	Report(ctx context.Context, err error, attrs map[string]string)
}

// OTelReporter records each error as a failed span. The span is exported by
// whatever tracer provider is installed, normally OTLP/HTTP to the
// configured error reporting endpoint.
type OTelReporter struct {
	tracer trace.Tracer
	logger *slog.Logger
}

func NewOTelReporter(tp trace.TracerProvider, logger *slog.Logger) *OTelReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &OTelReporter{
		tracer: tp.Tracer(instrumentationName),
		logger: logger,
	}
}

func (r *OTelReporter) Report(ctx context.Context, err error, attrs map[string]string) {
	if err == nil {
		return
	}
	_, span := r.tracer.Start(ctx, "run.failure", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	kv := toAttributes(attrs)
	span.SetAttributes(kv...)
	span.RecordError(err, trace.WithAttributes(kv...))
	span.SetStatus(codes.Error, err.Error())

	r.logger.ErrorContext(ctx, "run failure reported", "error", err, "attributes", len(attrs))
}

// toAttributes sorts keys so span attributes are deterministic.
func toAttributes(attrs map[string]string) []attribute.KeyValue {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]attribute.KeyValue, 0, len(keys))
	for _, k := range keys {
		kv = append(kv, attribute.String(k, attrs[k]))
	}
	return kv
}

// LogReporter only logs. It stands in when no endpoint is configured.
type LogReporter struct {
	logger *slog.Logger
}

func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(ctx context.Context, err error, attrs map[string]string) {
	if err == nil {
		return
	}
	args := []any{"error", err}
	for _, a := range toAttributes(attrs) {
		args = append(args, string(a.Key), a.Value.AsString())
	}
	r.logger.ErrorContext(ctx, "run failed", args...)
}
