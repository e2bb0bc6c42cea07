package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type evictionRecorder struct {
	results []string
}

func (e *evictionRecorder) ObserveEviction(result string) {
	e.results = append(e.results, result)
}

func TestReaper_Evict(t *testing.T) {
	dir := t.TempDir()
	ttl := 24 * time.Hour

	oldArticle := writeEntry(t, dir, ArticleKey("https://example.com/old"), "old", 48*time.Hour)
	youngArticle := writeEntry(t, dir, ArticleKey("https://example.com/young"), "young", time.Hour)
	oldSource := writeEntry(t, dir, SourceKey, "<rss/>", 72*time.Hour)
	unrelated := writeEntry(t, dir, "notes.txt", "keep me", 72*time.Hour)
	oldTemp := writeEntry(t, dir, ".tmp-123456", "partial", 48*time.Hour)
	youngTemp := writeEntry(t, dir, ".tmp-654321", "in flight", time.Minute)

	rec := &evictionRecorder{}
	reaper := NewReaper(dir, testLogger(), WithEvictionObserver(rec))

	result, err := reaper.Evict(context.Background(), ttl)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Evicted)
	assert.Equal(t, 1, result.TempRemoved)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 4, result.Scanned)
	assert.Equal(t, []string{"evicted", "evicted"}, rec.results)

	assertGone(t, oldArticle)
	assertGone(t, oldTemp)
	assertPresent(t, youngArticle)
	assertPresent(t, oldSource)
	assertPresent(t, unrelated)
	assertPresent(t, youngTemp)
}

func TestReaper_InjectedClock(t *testing.T) {
	dir := t.TempDir()
	path := writeEntry(t, dir, ArticleKey("https://example.com/a"), "a", 0)

	future := time.Now().Add(25 * time.Hour)
	reaper := NewReaper(dir, testLogger(), WithReaperClock(func() time.Time { return future }))

	result, err := reaper.Evict(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Evicted)
	assertGone(t, path)
}

func TestReaper_ContinuesAfterDeletionFailure(t *testing.T) {
	dir := t.TempDir()
	first := writeEntry(t, dir, ArticleKey("https://example.com/1"), "1", 48*time.Hour)
	second := writeEntry(t, dir, ArticleKey("https://example.com/2"), "2", 48*time.Hour)

	rec := &evictionRecorder{}
	reaper := NewReaper(dir, testLogger(),
		WithEvictionObserver(rec),
		withRemover(func(path string) error {
			if path == first {
				return errors.New("permission denied")
			}
			return os.Remove(path)
		}))

	result, err := reaper.Evict(context.Background(), 24*time.Hour)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Evicted)
	assert.ElementsMatch(t, []string{"failed", "evicted"}, rec.results)
	assertPresent(t, first)
	assertGone(t, second)
}

func TestReaper_MissingDirectory(t *testing.T) {
	reaper := NewReaper(filepath.Join(t.TempDir(), "absent"), testLogger())

	result, err := reaper.Evict(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, EvictResult{}, result)
}

func assertGone(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "%s should be removed", path)
}

func assertPresent(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.NoError(t, err, "%s should remain", path)
}
