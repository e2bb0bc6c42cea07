package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EvictionObserver receives one event per removal attempt. result is
// "evicted" or "failed".
type EvictionObserver interface {
	ObserveEviction(result string)
}

type EvictResult struct {
	Scanned     int   `json:"scanned"`
	Evicted     int   `json:"evicted"`
	Failed      int   `json:"failed"`
	TempRemoved int   `json:"temp_removed"`
	FreedBytes  int64 `json:"freed_bytes"`
}

type ReaperOption func(*Reaper)

func WithReaperClock(now func() time.Time) ReaperOption {
	return func(r *Reaper) {
		r.now = now
	}
}

func WithEvictionObserver(o EvictionObserver) ReaperOption {
	return func(r *Reaper) {
		r.observer = o
	}
}

// withRemover swaps file removal, for tests.
func withRemover(remove func(string) error) ReaperOption {
	return func(r *Reaper) {
		r.remove = remove
	}
}

// Reaper deletes article entries older than a TTL. The source entry and
// unrecognised files are never touched.
type Reaper struct {
	dir      string
	now      func() time.Time
	observer EvictionObserver
	remove   func(string) error
	logger   *slog.Logger
}

func NewReaper(dir string, logger *slog.Logger, opts ...ReaperOption) *Reaper {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reaper{
		dir:    dir,
		now:    time.Now,
		remove: os.Remove,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Evict removes article entries and orphaned temp files whose age exceeds
// ttl. Individual removal failures are logged and counted; only a failure to
// read the directory is returned.
func (r *Reaper) Evict(ctx context.Context, ttl time.Duration) (EvictResult, error) {
	var result EvictResult

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return result, fmt.Errorf("read cache dir %s: %w", r.dir, err)
	}

	now := r.now()
	for _, de := range entries {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if de.IsDir() {
			continue
		}

		name := de.Name()
		isTemp := strings.HasPrefix(name, tempPrefix)
		if !isTemp && !IsArticleKey(name) {
			continue
		}
		result.Scanned++

		info, err := de.Info()
		if err != nil {
			r.logger.Warn("failed to stat cache entry", "file", name, "error", err)
			continue
		}

		age := now.Sub(info.ModTime())
		if age <= ttl {
			continue
		}

		path := filepath.Join(r.dir, name)
		if err := r.remove(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			result.Failed++
			r.observe("failed")
			r.logger.Warn("failed to evict cache entry",
				"file", path,
				"error", err)
			continue
		}

		result.FreedBytes += info.Size()
		if isTemp {
			result.TempRemoved++
		} else {
			result.Evicted++
		}
		r.observe("evicted")
		r.logger.Info("evicted cache entry",
			"file", name,
			"age", age.Round(time.Second).String())
	}

	r.logger.Info("cache eviction completed",
		"scanned", result.Scanned,
		"evicted", result.Evicted,
		"temp_removed", result.TempRemoved,
		"failed", result.Failed,
		"freed_bytes", result.FreedBytes,
		"ttl", ttl.String())

	return result, nil
}

func (r *Reaper) observe(result string) {
	if r.observer != nil {
		r.observer.ObserveEviction(result)
	}
}
