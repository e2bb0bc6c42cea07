// ABOUTME: This file tests the JSON logger format and context field extraction
// ABOUTME: Ensures lower-case levels, service attributes and trace correlation
package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "line: %s", line)
		out = append(out, entry)
	}
	return out
}

func TestNew_Format(t *testing.T) {
	tests := map[string]struct {
		level    slog.Level
		message  string
		args     []any
		expected map[string]any
	}{
		"info level with attributes": {
			level:   slog.LevelInfo,
			message: "run completed",
			args:    []any{"items", 25, "output", "out.xml"},
			expected: map[string]any{
				"level":  "info",
				"msg":    "run completed",
				"items":  float64(25),
				"output": "out.xml",
			},
		},
		"error level": {
			level:   slog.LevelError,
			message: "fetch failed",
			args:    []any{"error", "status 503"},
			expected: map[string]any{
				"level": "error",
				"msg":   "fetch failed",
				"error": "status 503",
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, Config{Level: "debug", ServiceName: "test-service"})

			log.Log(context.Background(), tc.level, tc.message, tc.args...)

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			for k, v := range tc.expected {
				assert.Equal(t, v, lines[0][k], "field %s", k)
			}
			assert.Equal(t, "test-service", lines[0]["service"])
			assert.Equal(t, DefaultVersion, lines[0]["version"])
			assert.Contains(t, lines[0], "time")
		})
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: "warn"})

	log.Info("dropped")
	log.Warn("kept")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "kept", lines[0]["msg"])
	assert.Equal(t, DefaultServiceName, lines[0]["service"])
}

func TestNew_ContextFields(t *testing.T) {
	tests := map[string]struct {
		ctx      context.Context
		expected map[string]string
		absent   []string
	}{
		"run id": {
			ctx:      WithRunID(context.Background(), "run-1"),
			expected: map[string]string{"run_id": "run-1"},
			absent:   []string{"request_id", "operation"},
		},
		"request and operation": {
			ctx:      WithOperation(WithRequestID(context.Background(), "req-9"), "serve-feed"),
			expected: map[string]string{"request_id": "req-9", "operation": "serve-feed"},
			absent:   []string{"run_id"},
		},
		"empty context": {
			ctx:    context.Background(),
			absent: []string{"run_id", "request_id", "operation", "trace_id"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, Config{Level: "info"})

			log.InfoContext(tc.ctx, "message")

			lines := decodeLines(t, &buf)
			require.Len(t, lines, 1)
			for k, v := range tc.expected {
				assert.Equal(t, v, lines[0][k])
			}
			for _, k := range tc.absent {
				assert.NotContains(t, lines[0], k)
			}
		})
	}
}

func TestNew_TraceCorrelation(t *testing.T) {
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03},
		SpanID:     trace.SpanID{0x0a, 0x0b},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	var buf bytes.Buffer
	New(&buf, Config{}).InfoContext(ctx, "traced")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, sc.TraceID().String(), lines[0]["trace_id"])
	assert.Equal(t, sc.SpanID().String(), lines[0]["span_id"])
}

func TestContextAccessors(t *testing.T) {
	ctx := WithRequestID(WithRunID(context.Background(), "run-2"), "req-2")
	assert.Equal(t, "run-2", RunID(ctx))
	assert.Equal(t, "req-2", RequestID(ctx))
	assert.Empty(t, RunID(context.Background()))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, ParseLevel(in))
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("OTEL_ENABLED", "true")

	cfg := LoadConfigFromEnv()
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, DefaultServiceName, cfg.ServiceName)
	assert.True(t, cfg.OTelEnabled)
}

func TestNew_OTelEnabledKeepsLocalOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Config{Level: "info", OTelEnabled: true})

	log.Debug("below level")
	log.Info("exported")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "exported", lines[0]["msg"])
}

func TestExportHandler(t *testing.T) {
	var local, exported bytes.Buffer
	h := NewExportHandler(
		slog.NewJSONHandler(&local, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&exported, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.LevelInfo,
	)
	log := slog.New(h).With("run_id", "r1").WithGroup("feed")

	log.Debug("below level")
	log.Info("assembled", "items", 3)

	for name, buf := range map[string]*bytes.Buffer{"local": &local, "exported": &exported} {
		t.Run(name, func(t *testing.T) {
			lines := decodeLines(t, buf)
			require.Len(t, lines, 1)
			assert.Equal(t, "assembled", lines[0]["msg"])
			assert.Equal(t, "r1", lines[0]["run_id"])
			assert.Equal(t, map[string]any{"items": float64(3)}, lines[0]["feed"])
		})
	}
}
