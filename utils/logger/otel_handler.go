// ABOUTME: Tees log records to the local JSON handler and to the OTel log pipeline
// ABOUTME: The exporter only receives records at or above the configured level
package logger

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/log/global"
)

// ExportHandler writes every record to a local handler and forwards the same
// record to an exporter handler.
type ExportHandler struct {
	local    slog.Handler
	exporter slog.Handler
	level    slog.Level
}

// NewOTelExportHandler exports through the otelslog bridge to the global
// logger provider installed by the otel package.
func NewOTelExportHandler(local slog.Handler, serviceName string, level slog.Level) *ExportHandler {
	exporter := otelslog.NewHandler(serviceName,
		otelslog.WithLoggerProvider(global.GetLoggerProvider()))
	return NewExportHandler(local, exporter, level)
}

func NewExportHandler(local, exporter slog.Handler, level slog.Level) *ExportHandler {
	return &ExportHandler{local: local, exporter: exporter, level: level}
}

func (h *ExportHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && (h.local.Enabled(ctx, level) || h.exporter.Enabled(ctx, level))
}

// Handle returns the local write error only. Export errors are dropped.
func (h *ExportHandler) Handle(ctx context.Context, r slog.Record) error {
	var localErr error
	if h.local.Enabled(ctx, r.Level) {
		localErr = h.local.Handle(ctx, r.Clone())
	}
	if h.exporter.Enabled(ctx, r.Level) {
		_ = h.exporter.Handle(ctx, r.Clone())
	}
	return localErr
}

func (h *ExportHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ExportHandler{
		local:    h.local.WithAttrs(attrs),
		exporter: h.exporter.WithAttrs(attrs),
		level:    h.level,
	}
}

func (h *ExportHandler) WithGroup(name string) slog.Handler {
	return &ExportHandler{
		local:    h.local.WithGroup(name),
		exporter: h.exporter.WithGroup(name),
		level:    h.level,
	}
}
