// ABOUTME: This file provides logger configuration loaded from the environment
// ABOUTME: LOG_LEVEL and SERVICE_NAME select verbosity and the service attribute
package logger

import (
	"log/slog"
	"os"
	"strings"
)

const (
	DefaultServiceName = "phoronix-rss-augmented"
	DefaultVersion     = "1.0.0"
)

// Config represents logger configuration.
type Config struct {
	Level       string
	ServiceName string
	Version     string
	// OTelEnabled fans records out to the OpenTelemetry log bridge as well.
	OTelEnabled bool
}

// LoadConfigFromEnv loads configuration from environment variables.
func LoadConfigFromEnv() Config {
	return Config{
		Level:       getEnvOrDefault("LOG_LEVEL", "info"),
		ServiceName: getEnvOrDefault("SERVICE_NAME", DefaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", DefaultVersion),
		OTelEnabled: getEnvOrDefault("OTEL_ENABLED", "false") == "true",
	}
}

// ParseLevel maps a level name to slog.Level; unknown names become info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
