// ABOUTME: Paced HTTP fetcher with bounded exponential retry for feed and article pages
// ABOUTME: Exhausted retries surface as a terminal *domain.FetchError carrying the last response
package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/retry"
)

const errorBodyLimit = 2048

var errBodyTooLarge = errors.New("response body exceeds limit")

// FetchObserver is notified of every attempt. status is one of "2xx", "3xx",
// "4xx", "5xx" or "error".
type FetchObserver interface {
	ObserveFetchAttempt(status string)
}

type FetcherOption func(*HTTPFetcher)

// WithRobots makes the fetcher consult robots.txt before each URL.
func WithRobots(r *RobotsChecker) FetcherOption {
	return func(f *HTTPFetcher) {
		f.robots = r
	}
}

func WithFetchObserver(o FetchObserver) FetcherOption {
	return func(f *HTTPFetcher) {
		f.observer = o
	}
}

// WithRetrier overrides the retrier built from FetchConfig.
func WithRetrier(r *retry.Retrier) FetcherOption {
	return func(f *HTTPFetcher) {
		f.retrier = r
	}
}

type HTTPFetcher struct {
	client       *http.Client
	retrier      *retry.Retrier
	userAgent    string
	maxBodyBytes int64
	robots       *RobotsChecker
	observer     FetchObserver
	tracer       trace.Tracer
	logger       *slog.Logger
}

// NewHTTPFetcher sleeps fetchCfg.Delay before every attempt and backs off by
// Delay*2^(n-1) between failed attempts, capped at fetchCfg.MaxBackoff.
func NewHTTPFetcher(client *http.Client, fetchCfg config.FetchConfig, httpCfg config.HTTPConfig, logger *slog.Logger, opts ...FetcherOption) *HTTPFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &HTTPFetcher{
		client:       client,
		userAgent:    httpCfg.UserAgent,
		maxBodyBytes: httpCfg.MaxBodyBytes,
		tracer:       otel.Tracer("phoronix-rss-augmented/driver"),
		logger:       logger,
	}
	f.retrier = retry.NewRetrier(retry.RetryConfig{
		MaxAttempts:     fetchCfg.MaxAttempts,
		PreAttemptDelay: fetchCfg.Delay,
		BaseDelay:       fetchCfg.Delay,
		MaxDelay:        fetchCfg.MaxBackoff,
		BackoffFactor:   2.0,
	}, isRetryableFetchError, logger)

	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the body of a 2xx response for rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			f.logger.Warn("fetch disallowed by robots.txt", "url", rawURL)
			return nil, &domain.FetchError{URL: rawURL, Err: domain.ErrRobotsDisallowed, Exhausted: true}
		}
	}

	var body []byte
	attempts, err := f.retrier.DoAttempts(ctx, func(attempt int) error {
		b, attemptErr := f.attempt(ctx, rawURL, attempt)
		if attemptErr != nil {
			return attemptErr
		}
		body = b
		return nil
	})
	if err == nil {
		return body, nil
	}

	if ctx.Err() != nil {
		return nil, err
	}

	var fe *domain.FetchError
	if errors.As(err, &fe) {
		fe.Attempts = attempts
		fe.Exhausted = true
		return nil, fe
	}
	return nil, &domain.FetchError{URL: rawURL, Attempts: attempts, Exhausted: true, Err: err}
}

func (f *HTTPFetcher) attempt(ctx context.Context, rawURL string, attempt int) ([]byte, error) {
	ctx, span := f.tracer.Start(ctx, "fetch.attempt", trace.WithAttributes(
		attribute.String("http.url", rawURL),
		attribute.Int("fetch.attempt", attempt),
	))
	defer span.End()

	f.logger.Info("fetching", "url", rawURL, "attempt", attempt)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.FetchError{URL: rawURL, Attempts: attempt, Err: fmt.Errorf("build request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/html;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		f.observe("error")
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		return nil, &domain.FetchError{URL: rawURL, Attempts: attempt, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	f.observe(statusClass(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		span.SetStatus(codes.Error, resp.Status)
		f.logger.Warn("fetch returned non-success status",
			"url", rawURL,
			"attempt", attempt,
			"status_code", resp.StatusCode)
		return nil, &domain.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       string(excerpt),
			Attempts:   attempt,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := readLimited(resp.Body, f.maxBodyBytes)
	if err != nil {
		span.RecordError(err)
		return nil, &domain.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Attempts: attempt, Err: err}
	}

	span.SetAttributes(attribute.Int("http.response_size", len(body)))
	return body, nil
}

func (f *HTTPFetcher) observe(status string) {
	if f.observer != nil {
		f.observer.ObserveFetchAttempt(status)
	}
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: %d bytes", errBodyTooLarge, limit)
	}
	return body, nil
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

func isRetryableFetchError(err error) bool {
	// Caller cancellation is handled by the retrier; client timeouts retry.
	return !errors.Is(err, domain.ErrRobotsDisallowed) && !errors.Is(err, errBodyTooLarge)
}
