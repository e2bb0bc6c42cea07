package metrics

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	srv := httptest.NewServer(c.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCollector_Observers(t *testing.T) {
	c := NewCollector(false, testLogger())

	c.ObserveCacheLookup("article", cache.OutcomeHit)
	c.ObserveCacheLookup("article", cache.OutcomeHit)
	c.ObserveCacheLookup("source", cache.OutcomeStale)
	c.ObserveFetchAttempt("2xx")
	c.ObserveFetchAttempt("5xx")
	c.ObserveEviction("evicted")
	c.ObserveEviction("failed")

	out := scrape(t, c)

	for _, want := range []string{
		`feedaug_cache_lookups_total{outcome="hit",policy="article"} 2`,
		`feedaug_cache_lookups_total{outcome="stale",policy="source"} 1`,
		`feedaug_fetch_attempts_total{status="2xx"} 1`,
		`feedaug_fetch_attempts_total{status="5xx"} 1`,
		`feedaug_evictions_total{result="evicted"} 1`,
		`feedaug_evictions_total{result="failed"} 1`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "go_goroutines")
}

func TestCollector_ObserveRun(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		result *domain.RunResult
		err    error
		want   []string
		absent []string
	}{
		"success": {
			result: &domain.RunResult{StartedAt: started, Duration: 30 * time.Second, Items: 25},
			want: []string{
				`feedaug_runs_total{status="success"} 1`,
				`feedaug_items_total 25`,
				`feedaug_last_success_timestamp_seconds 1.77236643e+09`,
				`feedaug_run_duration_seconds_count 1`,
			},
		},
		"failure": {
			result: &domain.RunResult{StartedAt: started, Duration: 2 * time.Second},
			err:    errors.New("fetch exhausted"),
			want: []string{
				`feedaug_runs_total{status="failure"} 1`,
				`feedaug_run_duration_seconds_count 1`,
				`feedaug_last_success_timestamp_seconds 0`,
			},
		},
		"failure before start": {
			err:  errors.New("config"),
			want: []string{`feedaug_runs_total{status="failure"} 1`, `feedaug_run_duration_seconds_count 0`},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := NewCollector(false, testLogger())
			c.ObserveRun(tc.result, tc.err)

			out := scrape(t, c)
			for _, want := range tc.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector(false, testLogger())
	c.ObserveSkippedRun()

	path := filepath.Join(t.TempDir(), "textfile", "feedaug.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `feedaug_runs_total{status="locked"} 1`)
	assert.Contains(t, string(data), "# TYPE feedaug_items_total gauge")
}

func TestCollector_RuntimeCollectors(t *testing.T) {
	c := NewCollector(true, testLogger())
	assert.Contains(t, scrape(t, c), "go_goroutines")
}
