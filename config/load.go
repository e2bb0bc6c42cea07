package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Overrides holds command-line values that win over the environment. Empty
// fields are ignored.
type Overrides struct {
	FeedURL    string
	OutputPath string
	CacheDir   string
}

func (o Overrides) apply(config *Config) {
	if o.FeedURL != "" {
		config.Feed.SourceURL = o.FeedURL
	}
	if o.OutputPath != "" {
		config.Feed.OutputPath = o.OutputPath
	}
	if o.CacheDir != "" {
		config.Cache.Dir = o.CacheDir
	}
}

// LoadConfig builds the configuration from defaults, overrides provided via
// environment variables and the optional secrets file.
func LoadConfig() (*Config, error) {
	return LoadConfigWithOverrides(Overrides{})
}

// LoadConfigWithOverrides is LoadConfig with command-line overrides applied
// before validation.
func LoadConfigWithOverrides(overrides Overrides) (*Config, error) {
	config := defaultConfig()

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	overrides.apply(config)

	if err := ApplySecrets(config); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func loadFromEnv(config *Config) error {
	*config = *defaultConfig()

	if err := loadFeedConfig(&config.Feed); err != nil {
		return fmt.Errorf("failed to load feed config: %w", err)
	}

	if err := loadCacheConfig(&config.Cache); err != nil {
		return fmt.Errorf("failed to load cache config: %w", err)
	}

	if err := loadHTTPConfig(&config.HTTP); err != nil {
		return fmt.Errorf("failed to load HTTP config: %w", err)
	}

	if err := loadFetchConfig(&config.Fetch); err != nil {
		return fmt.Errorf("failed to load fetch config: %w", err)
	}

	if err := loadSanitizeConfig(&config.Sanitize); err != nil {
		return fmt.Errorf("failed to load sanitize config: %w", err)
	}

	if err := loadServerConfig(&config.Server); err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	if err := loadMetricsConfig(&config.Metrics); err != nil {
		return fmt.Errorf("failed to load metrics config: %w", err)
	}

	if err := loadRedisConfig(&config.Redis); err != nil {
		return fmt.Errorf("failed to load redis config: %w", err)
	}

	if err := loadSecretsConfig(&config.Secrets); err != nil {
		return fmt.Errorf("failed to load secrets config: %w", err)
	}

	return nil
}

func loadFeedConfig(cfg *FeedConfig) error {
	cfg.SourceURL = stringEnv("FEED_SOURCE_URL", cfg.SourceURL)
	cfg.OutputPath = stringEnv("OUTPUT_PATH", cfg.OutputPath)
	cfg.SiteOrigin = stringEnv("SITE_ORIGIN", cfg.SiteOrigin)
	cfg.MissingArticlePolicy = stringEnv("ARTICLE_MISSING_POLICY", cfg.MissingArticlePolicy)
	return nil
}

func loadCacheConfig(cfg *CacheConfig) error {
	var err error

	cfg.Dir = stringEnv("CACHE_DIR", cfg.Dir)

	if cfg.SourceTTL, err = parseDurationEnv("CACHE_SOURCE_TTL", cfg.SourceTTL); err != nil {
		return err
	}

	if cfg.ItemTTL, err = parseDurationEnv("CACHE_ITEM_TTL", cfg.ItemTTL); err != nil {
		return err
	}

	return nil
}

// loadHTTPConfig loads HTTP client configuration from environment variables
func loadHTTPConfig(cfg *HTTPConfig) error {
	var err error

	if cfg.Timeout, err = parseDurationEnv("HTTP_TIMEOUT", cfg.Timeout); err != nil {
		return err
	}

	if cfg.MaxIdleConns, err = parseIntEnv("HTTP_MAX_IDLE_CONNS", cfg.MaxIdleConns); err != nil {
		return err
	}

	if cfg.MaxIdleConnsPerHost, err = parseIntEnv("HTTP_MAX_IDLE_CONNS_PER_HOST", cfg.MaxIdleConnsPerHost); err != nil {
		return err
	}

	if cfg.IdleConnTimeout, err = parseDurationEnv("HTTP_IDLE_CONN_TIMEOUT", cfg.IdleConnTimeout); err != nil {
		return err
	}

	if cfg.TLSHandshakeTimeout, err = parseDurationEnv("HTTP_TLS_HANDSHAKE_TIMEOUT", cfg.TLSHandshakeTimeout); err != nil {
		return err
	}

	cfg.UserAgent = stringEnv("HTTP_USER_AGENT", cfg.UserAgent)

	if cfg.MaxBodyBytes, err = parseInt64Env("HTTP_MAX_BODY_BYTES", cfg.MaxBodyBytes); err != nil {
		return err
	}

	if cfg.MaxRedirects, err = parseIntEnv("HTTP_MAX_REDIRECTS", cfg.MaxRedirects); err != nil {
		return err
	}

	return nil
}

func loadFetchConfig(cfg *FetchConfig) error {
	var err error

	if cfg.Delay, err = parseDurationEnv("FETCH_DELAY", cfg.Delay); err != nil {
		return err
	}

	if cfg.MaxAttempts, err = parseIntEnv("FETCH_MAX_ATTEMPTS", cfg.MaxAttempts); err != nil {
		return err
	}

	if cfg.MaxBackoff, err = parseDurationEnv("FETCH_MAX_BACKOFF", cfg.MaxBackoff); err != nil {
		return err
	}

	if cfg.RespectRobots, err = parseBoolEnv("FETCH_RESPECT_ROBOTS", cfg.RespectRobots); err != nil {
		return err
	}

	return nil
}

func loadSanitizeConfig(cfg *SanitizeConfig) error {
	var err error

	if cfg.PolicyEnabled, err = parseBoolEnv("SANITIZE_POLICY_ENABLED", cfg.PolicyEnabled); err != nil {
		return err
	}

	cfg.AdClass = stringEnv("SANITIZE_AD_CLASS", cfg.AdClass)
	return nil
}

// loadServerConfig loads serve mode configuration from environment variables
func loadServerConfig(cfg *ServerConfig) error {
	var err error

	if cfg.Port, err = parseIntEnv("SERVER_PORT", cfg.Port); err != nil {
		return err
	}

	if cfg.ShutdownTimeout, err = parseDurationEnv("SERVER_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return err
	}

	if cfg.ReadTimeout, err = parseDurationEnv("SERVER_READ_TIMEOUT", cfg.ReadTimeout); err != nil {
		return err
	}

	if cfg.WriteTimeout, err = parseDurationEnv("SERVER_WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return err
	}

	if cfg.RunInterval, err = parseDurationEnv("SERVE_INTERVAL", cfg.RunInterval); err != nil {
		return err
	}

	if cfg.RetryAfter, err = parseDurationEnv("SERVE_RETRY_AFTER", cfg.RetryAfter); err != nil {
		return err
	}

	return nil
}

func loadMetricsConfig(cfg *MetricsConfig) error {
	var err error

	if cfg.Enabled, err = parseBoolEnv("METRICS_ENABLED", cfg.Enabled); err != nil {
		return err
	}

	cfg.Path = stringEnv("METRICS_PATH", cfg.Path)
	cfg.Textfile = stringEnv("METRICS_TEXTFILE", cfg.Textfile)
	return nil
}

func loadRedisConfig(cfg *RedisConfig) error {
	var err error

	cfg.URL = stringEnv("REDIS_URL", cfg.URL)
	cfg.LockKey = stringEnv("REDIS_LOCK_KEY", cfg.LockKey)

	if cfg.LockTTL, err = parseDurationEnv("REDIS_LOCK_TTL", cfg.LockTTL); err != nil {
		return err
	}

	return nil
}

func loadSecretsConfig(cfg *SecretsConfig) error {
	var err error

	cfg.File = stringEnv("SECRETS_FILE", cfg.File)

	if cfg.HeartbeatTimeout, err = parseDurationEnv("HEARTBEAT_TIMEOUT", cfg.HeartbeatTimeout); err != nil {
		return err
	}

	return nil
}

func stringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if value := os.Getenv(key); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return d, nil
	}
	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return i, nil
	}
	return defaultValue, nil
}

func parseInt64Env(key string, defaultValue int64) (int64, error) {
	if value := os.Getenv(key); value != "" {
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return i, nil
	}
	return defaultValue, nil
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	if value := os.Getenv(key); value != "" {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid %s: %s", key, value)
		}
		return b, nil
	}
	return defaultValue, nil
}
