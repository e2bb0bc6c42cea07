package service

import (
	"context"
	"time"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

//go:generate mockgen -source=interfaces.go -destination=../test/mocks/service_mocks.go -package=mocks

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ContentCache is the TTL cache in front of the fetcher.
type ContentCache interface {
	Lookup(ctx context.Context, key string, policy cache.Policy, fetch cache.FetchFunc) (cache.Result, error)
}

// CacheEvictor removes expired article entries.
type CacheEvictor interface {
	Evict(ctx context.Context, ttl time.Duration) (cache.EvictResult, error)
}

// Sanitizer cleans the markup of one <article> element.
type Sanitizer interface {
	Sanitize(markup string) (string, error)
}

// ConfigProvider hands out the configuration for the next run.
type ConfigProvider interface {
	GetConfig() *config.Config
}

// AugmentService performs one complete augmentation run.
type AugmentService interface {
	Run(ctx context.Context) (*domain.RunResult, error)
}
