package config

import (
	"fmt"
	"sync"

	"log/slog"
)

// ConfigManager hands out copies of the active configuration. Serve mode
// reloads the secrets file through it before each scheduled run.
type ConfigManager struct {
	config *Config
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewConfigManager(config *Config, logger *slog.Logger) *ConfigManager {
	return &ConfigManager{
		config: config,
		logger: logger,
	}
}

func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	configCopy := *cm.config
	return &configCopy
}

func (cm *ConfigManager) UpdateConfig(newConfig *Config) error {
	if err := validateConfig(newConfig); err != nil {
		return fmt.Errorf("new config validation failed: %w", err)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()

	oldConfig := cm.config
	cm.config = newConfig

	if cm.logger != nil {
		cm.logger.Info("configuration updated",
			"old_public_url", oldConfig.Secrets.OutputPublicURL,
			"new_public_url", newConfig.Secrets.OutputPublicURL,
			"heartbeat_configured", newConfig.Secrets.HeartbeatURL != "")
	}

	return nil
}

// ReloadSecrets re-reads the secrets file and swaps in the result.
func (cm *ConfigManager) ReloadSecrets() (*Config, error) {
	next := cm.GetConfig()
	if err := ApplySecrets(next); err != nil {
		return nil, err
	}
	if err := cm.UpdateConfig(next); err != nil {
		return nil, err
	}
	return next, nil
}
