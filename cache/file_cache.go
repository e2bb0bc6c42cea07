// ABOUTME: Two-tier TTL disk cache keyed by file name, freshness judged by modification time
// ABOUTME: Misses and stale entries are refetched and written through atomically
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// SourceKey is the cache entry for the upstream feed.
const SourceKey = "source_rss.xml"

var articleKeyPattern = regexp.MustCompile(`^[0-9a-f]{64}\.html$`)

// ArticleKey maps an article URL to its cache file name.
func ArticleKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:]) + ".html"
}

// IsArticleKey reports whether name has the shape produced by ArticleKey.
func IsArticleKey(name string) bool {
	return articleKeyPattern.MatchString(name)
}

type Outcome string

const (
	OutcomeHit   Outcome = "hit"
	OutcomeMiss  Outcome = "miss"
	OutcomeStale Outcome = "stale"
)

// Policy is a named freshness window.
type Policy struct {
	Name string
	TTL  time.Duration
}

func SourcePolicy(ttl time.Duration) Policy  { return Policy{Name: "source", TTL: ttl} }
func ArticlePolicy(ttl time.Duration) Policy { return Policy{Name: "article", TTL: ttl} }

// Observer receives one event per lookup.
type Observer interface {
	ObserveCacheLookup(policy string, outcome Outcome)
}

type Entry struct {
	Key     string
	Path    string
	ModTime time.Time
	Size    int64
}

// Age of the entry relative to now.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.ModTime)
}

type FetchFunc func(ctx context.Context) ([]byte, error)

type Result struct {
	Content []byte
	Outcome Outcome
}

type Option func(*FileCache)

// WithClock sets the source of "now" used for freshness.
func WithClock(now func() time.Time) Option {
	return func(c *FileCache) {
		c.now = now
	}
}

func WithObserver(o Observer) Option {
	return func(c *FileCache) {
		c.observer = o
	}
}

type FileCache struct {
	dir      string
	now      func() time.Time
	observer Observer
	logger   *slog.Logger
}

func NewFileCache(dir string, logger *slog.Logger, opts ...Option) *FileCache {
	if logger == nil {
		logger = slog.Default()
	}
	c := &FileCache{
		dir:    dir,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the on-disk location of key.
func (c *FileCache) Path(key string) string {
	return filepath.Join(c.dir, key)
}

// Stat describes the entry for key. It returns an error wrapping
// fs.ErrNotExist when there is none.
func (c *FileCache) Stat(key string) (Entry, error) {
	if err := validateKey(key); err != nil {
		return Entry{}, err
	}
	path := c.Path(key)
	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Key: key, Path: path, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// GetOrRefresh returns fresh cached content for key, or calls fetch and
// stores its result. A failed fetch leaves any previous entry untouched.
func (c *FileCache) GetOrRefresh(ctx context.Context, key string, policy Policy, fetch FetchFunc) ([]byte, error) {
	res, err := c.Lookup(ctx, key, policy, fetch)
	if err != nil {
		return nil, err
	}
	return res.Content, nil
}

// Lookup is GetOrRefresh that also reports the outcome.
func (c *FileCache) Lookup(ctx context.Context, key string, policy Policy, fetch FetchFunc) (Result, error) {
	entry, err := c.Stat(key)
	outcome := OutcomeMiss
	switch {
	case err == nil:
		age := entry.Age(c.now())
		if age < policy.TTL {
			content, readErr := os.ReadFile(entry.Path)
			if readErr == nil {
				c.logger.Info("cache hit",
					"policy", policy.Name,
					"key", key,
					"age", age.Round(time.Second).String())
				c.observe(policy, OutcomeHit)
				return Result{Content: content, Outcome: OutcomeHit}, nil
			}
			c.logger.Warn("cache entry unreadable, refetching", "key", key, "error", readErr)
		} else {
			c.logger.Info("cache stale",
				"policy", policy.Name,
				"key", key,
				"age", age.Round(time.Second).String(),
				"ttl", policy.TTL.String())
		}
		outcome = OutcomeStale
	case errors.Is(err, fs.ErrNotExist):
		c.logger.Info("cache miss", "policy", policy.Name, "key", key)
	default:
		return Result{}, fmt.Errorf("stat cache entry %s: %w", key, err)
	}

	content, err := fetch(ctx)
	if err != nil {
		return Result{}, err
	}

	if err := c.Put(key, content); err != nil {
		return Result{}, err
	}

	c.observe(policy, outcome)
	return Result{Content: content, Outcome: outcome}, nil
}

// Put stores content under key atomically.
func (c *FileCache) Put(key string, content []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := WriteFileAtomic(c.Path(key), content, 0o644); err != nil {
		return fmt.Errorf("write cache entry %s: %w", key, err)
	}
	return nil
}

func (c *FileCache) observe(policy Policy, outcome Outcome) {
	if c.observer != nil {
		c.observer.ObserveCacheLookup(policy.Name, outcome)
	}
}

func validateKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, tempPrefix) {
		return fmt.Errorf("invalid cache key %q", key)
	}
	return nil
}
