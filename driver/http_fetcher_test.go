package driver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testHTTPConfig() config.HTTPConfig {
	return config.HTTPConfig{
		Timeout:      5 * time.Second,
		UserAgent:    "feedaug-test/1.0",
		MaxBodyBytes: 1 << 20,
		MaxRedirects: 5,
	}
}

type waitRecorder struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (w *waitRecorder) sleep(ctx context.Context, d time.Duration) error {
	w.mu.Lock()
	w.waits = append(w.waits, d)
	w.mu.Unlock()
	return ctx.Err()
}

type statusCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (s *statusCounter) ObserveFetchAttempt(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string]int{}
	}
	s.counts[status]++
}

func newTestFetcher(t *testing.T, fetchCfg config.FetchConfig, rec *waitRecorder, opts ...FetcherOption) *HTTPFetcher {
	t.Helper()
	r := retry.NewRetrier(retry.RetryConfig{
		MaxAttempts:     fetchCfg.MaxAttempts,
		PreAttemptDelay: fetchCfg.Delay,
		BaseDelay:       fetchCfg.Delay,
		MaxDelay:        fetchCfg.MaxBackoff,
		BackoffFactor:   2.0,
	}, isRetryableFetchError, testLogger(), retry.WithSleeper(rec.sleep))
	opts = append([]FetcherOption{WithRetrier(r)}, opts...)
	return NewHTTPFetcher(NewHTTPClient(testHTTPConfig()), fetchCfg, testHTTPConfig(), testLogger(), opts...)
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	fetchCfg := config.FetchConfig{Delay: 5 * time.Second, MaxAttempts: 3, MaxBackoff: 2 * time.Minute}

	tests := map[string]struct {
		responses    []int
		wantErr      bool
		wantCalls    int32
		wantWaits    []time.Duration
		wantStatus   int
		wantAttempts int
	}{
		"success on first attempt": {
			responses: []int{200},
			wantCalls: 1,
			wantWaits: []time.Duration{5 * time.Second},
		},
		"success after one 503": {
			responses: []int{503, 200},
			wantCalls: 2,
			wantWaits: []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second},
		},
		"exhausted after three failures": {
			responses:    []int{500, 502, 503},
			wantErr:      true,
			wantCalls:    3,
			wantWaits:    []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 10 * time.Second, 5 * time.Second},
			wantStatus:   503,
			wantAttempts: 3,
		},
		"404 is retried like any non-2xx": {
			responses:    []int{404, 404, 404},
			wantErr:      true,
			wantCalls:    3,
			wantWaits:    []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 10 * time.Second, 5 * time.Second},
			wantStatus:   404,
			wantAttempts: 3,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var calls int32
			var gotUA atomic.Value
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				gotUA.Store(r.Header.Get("User-Agent"))
				status := tc.responses[int(n)-1]
				w.WriteHeader(status)
				if status == http.StatusOK {
					_, _ = w.Write([]byte("<rss/>"))
				} else {
					_, _ = w.Write([]byte("upstream says no"))
				}
			}))
			defer server.Close()

			rec := &waitRecorder{}
			fetcher := newTestFetcher(t, fetchCfg, rec)

			body, err := fetcher.Fetch(context.Background(), server.URL+"/rss.php")

			assert.Equal(t, tc.wantCalls, atomic.LoadInt32(&calls))
			assert.Equal(t, tc.wantWaits, rec.waits)
			assert.Equal(t, "feedaug-test/1.0", gotUA.Load())

			if !tc.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "<rss/>", string(body))
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrFetchExhausted))
			var fe *domain.FetchError
			require.True(t, errors.As(err, &fe))
			assert.True(t, fe.Terminal())
			assert.Equal(t, tc.wantStatus, fe.StatusCode)
			assert.Equal(t, tc.wantAttempts, fe.Attempts)
			assert.Equal(t, "upstream says no", fe.Body)
		})
	}
}

func TestHTTPFetcher_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	rec := &waitRecorder{}
	fetcher := newTestFetcher(t, config.FetchConfig{MaxAttempts: 2}, rec)

	_, err := fetcher.Fetch(context.Background(), url)

	require.Error(t, err)
	var fe *domain.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 0, fe.StatusCode)
	assert.Equal(t, 2, fe.Attempts)
	assert.NotNil(t, fe.Err)
}

func TestHTTPFetcher_BodyTooLargeIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer server.Close()

	httpCfg := testHTTPConfig()
	httpCfg.MaxBodyBytes = 16
	fetcher := NewHTTPFetcher(NewHTTPClient(httpCfg), config.FetchConfig{MaxAttempts: 3}, httpCfg, testLogger())

	_, err := fetcher.Fetch(context.Background(), server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, errBodyTooLarge)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHTTPFetcher_ContextCancelled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewHTTPFetcher(NewHTTPClient(testHTTPConfig()), config.FetchConfig{Delay: time.Hour, MaxAttempts: 3}, testHTTPConfig(), testLogger())
	_, err := fetcher.Fetch(ctx, server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, domain.ErrFetchExhausted))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestHTTPFetcher_Observer(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	counter := &statusCounter{}
	fetcher := newTestFetcher(t, config.FetchConfig{MaxAttempts: 3}, &waitRecorder{}, WithFetchObserver(counter))

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"5xx": 1, "2xx": 1}, counter.counts)
}

func TestHTTPFetcher_RobotsDisallowed(t *testing.T) {
	var pageCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		atomic.AddInt32(&pageCalls, 1)
		_, _ = w.Write([]byte("page"))
	}))
	defer server.Close()

	client := NewHTTPClient(testHTTPConfig())
	robots := NewRobotsChecker(client, "feedaug-test/1.0", testLogger())
	fetcher := newTestFetcher(t, config.FetchConfig{MaxAttempts: 3}, &waitRecorder{}, WithRobots(robots))

	_, err := fetcher.Fetch(context.Background(), server.URL+"/private/a")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRobotsDisallowed)

	body, err := fetcher.Fetch(context.Background(), server.URL+"/news/a")
	require.NoError(t, err)
	assert.Equal(t, "page", string(body))
	assert.Equal(t, int32(1), atomic.LoadInt32(&pageCalls))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "4xx", statusClass(404))
	assert.Equal(t, "5xx", statusClass(503))
	assert.Equal(t, "error", statusClass(0))
}
