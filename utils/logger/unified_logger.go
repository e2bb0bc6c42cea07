// ABOUTME: This file builds the process-wide slog JSON logger
// ABOUTME: Lower-case levels, fixed service/version attributes, context and trace fields
package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New returns a JSON logger writing to output. Records carry the service
// name and version, the run/request/operation values found in the context,
// and trace correlation IDs when a span is active.
func New(output io.Writer, cfg Config) *slog.Logger {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	if cfg.Version == "" {
		cfg.Version = DefaultVersion
	}
	level := ParseLevel(cfg.Level)

	options := &slog.HandlerOptions{
		Level:       level,
		AddSource:   false,
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler = slog.NewJSONHandler(output, options)
	handler = NewTraceContextHandler(NewContextHandler(handler))
	if cfg.OTelEnabled {
		handler = NewOTelExportHandler(handler, cfg.ServiceName, level)
	}

	return slog.New(handler).With("service", cfg.ServiceName, "version", cfg.Version)
}

// replaceAttr lower-cases the level for the log forwarder.
func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			return slog.Attr{Key: slog.LevelKey, Value: slog.StringValue(strings.ToLower(level.String()))}
		}
	}
	return a
}
