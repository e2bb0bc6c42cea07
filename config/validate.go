package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

const minLockTTL = 3 * time.Second

func validateConfig(config *Config) error {
	if config.Feed.SourceURL == "" {
		return fmt.Errorf("feed source URL cannot be empty")
	}

	if u, err := url.Parse(config.Feed.SourceURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid feed source URL: %q", config.Feed.SourceURL)
	}

	if u, err := url.Parse(config.Feed.SiteOrigin); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid site origin: %q", config.Feed.SiteOrigin)
	}

	if config.Feed.OutputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}

	if !domain.MissingArticlePolicy(config.Feed.MissingArticlePolicy).Valid() {
		return fmt.Errorf("invalid missing article policy: %q", config.Feed.MissingArticlePolicy)
	}

	if config.Cache.Dir == "" {
		return fmt.Errorf("cache dir cannot be empty")
	}

	if config.Cache.SourceTTL <= 0 {
		return fmt.Errorf("source cache TTL must be positive: %v", config.Cache.SourceTTL)
	}

	if config.Cache.ItemTTL <= 0 {
		return fmt.Errorf("item cache TTL must be positive: %v", config.Cache.ItemTTL)
	}

	if config.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP timeout must be positive: %v", config.HTTP.Timeout)
	}

	if config.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive: %d", config.HTTP.MaxBodyBytes)
	}

	if config.HTTP.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must be non-negative: %d", config.HTTP.MaxRedirects)
	}

	if config.Fetch.Delay < 0 {
		return fmt.Errorf("fetch delay must be non-negative: %v", config.Fetch.Delay)
	}

	if config.Fetch.MaxAttempts <= 0 {
		return fmt.Errorf("fetch max attempts must be positive: %d", config.Fetch.MaxAttempts)
	}

	if config.Fetch.MaxBackoff < 0 {
		return fmt.Errorf("fetch max backoff must be non-negative: %v", config.Fetch.MaxBackoff)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Server.RunInterval <= 0 {
		return fmt.Errorf("serve interval must be positive: %v", config.Server.RunInterval)
	}

	// The lease is renewed every third of its TTL while a run is in flight.
	if config.Redis.URL != "" && config.Redis.LockTTL < minLockTTL {
		return fmt.Errorf("redis lock TTL must be at least %v: %v", minLockTTL, config.Redis.LockTTL)
	}

	return nil
}
