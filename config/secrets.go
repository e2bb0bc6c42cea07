// ABOUTME: Optional dotenv secrets overlay for the public URL and collaborator endpoints
// ABOUTME: A missing file or missing key yields an empty value, never an error
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
)

// Secret keys read from the secrets file. The process environment wins over
// the file so deployments can inject them directly.
const (
	SecretOutputPublicURL        = "OUTPUT_PUBLIC_URL"
	SecretErrorReportingEndpoint = "ERROR_REPORTING_ENDPOINT"
	SecretHeartbeatURL           = "HEARTBEAT_URL"
)

// LoadSecrets reads the dotenv file at path. A missing file returns an empty map.
func LoadSecrets(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read secrets file %s: %w", path, err)
	}

	return values, nil
}

// ApplySecrets overlays the secrets file onto cfg.Secrets.
func ApplySecrets(cfg *Config) error {
	values, err := LoadSecrets(cfg.Secrets.File)
	if err != nil {
		return err
	}

	cfg.Secrets.OutputPublicURL = secretValue(values, SecretOutputPublicURL)
	cfg.Secrets.ErrorReportingEndpoint = secretValue(values, SecretErrorReportingEndpoint)
	cfg.Secrets.HeartbeatURL = secretValue(values, SecretHeartbeatURL)
	return nil
}

func secretValue(values map[string]string, key string) string {
	if v := stringEnv(key, ""); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(values[key])
}
