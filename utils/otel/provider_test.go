package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		t.Setenv("OTEL_SERVICE_NAME", "")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("OTEL_ENABLED", "")
		t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "")

		cfg := ConfigFromEnv("")

		assert.Equal(t, "phoronix-rss-augmented", cfg.ServiceName)
		assert.Equal(t, "http://localhost:4318", cfg.OTLPEndpoint)
		assert.False(t, cfg.Enabled)
		assert.False(t, cfg.ExportLogs)
		assert.Equal(t, 1.0, cfg.SampleRatio)
	})

	t.Run("custom values", func(t *testing.T) {
		t.Setenv("OTEL_SERVICE_NAME", "test-service")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel:4318/")
		t.Setenv("OTEL_ENABLED", "true")
		t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "0.5")

		cfg := ConfigFromEnv("")

		assert.Equal(t, "test-service", cfg.ServiceName)
		assert.Equal(t, "http://otel:4318", cfg.OTLPEndpoint)
		assert.True(t, cfg.Enabled)
		assert.True(t, cfg.ExportLogs)
		assert.Equal(t, 0.5, cfg.SampleRatio)
	})

	t.Run("error reporting endpoint enables tracing only", func(t *testing.T) {
		t.Setenv("OTEL_ENABLED", "")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://otel:4318")
		t.Setenv("OTEL_TRACE_SAMPLE_RATIO", "7")

		cfg := ConfigFromEnv("https://errors.example.com")

		assert.True(t, cfg.Enabled)
		assert.False(t, cfg.ExportLogs)
		assert.Equal(t, "https://errors.example.com", cfg.OTLPEndpoint)
		assert.Equal(t, 1.0, cfg.SampleRatio)
	})
}

func TestInitProvider_Disabled(t *testing.T) {
	cfg := Config{
		ServiceName:  "test",
		Enabled:      false,
		OTLPEndpoint: "http://localhost:4318",
	}

	shutdown, err := InitProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
