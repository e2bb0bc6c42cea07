// Package notifier sends run heartbeats to a dead-man's-switch monitor.
package notifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxFailureBody bounds the error text posted with a failure ping.
const maxFailureBody = 10 * 1024

// Notifier is told about the outcome of every run.
type Notifier interface {
	Success(ctx context.Context) error
	Failure(ctx context.Context, runErr error) error
}

// HTTPNotifier pings a healthchecks.io style URL: the base URL on success and
// the base URL with "/fail" appended to its path on failure. Query
// parameters such as a run id are kept on both.
type HTTPNotifier struct {
	client  *http.Client
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

func NewHTTPNotifier(client *http.Client, url string, timeout time.Duration, logger *slog.Logger) *HTTPNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPNotifier{
		client:  client,
		url:     strings.TrimSuffix(url, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

func (n *HTTPNotifier) Success(ctx context.Context) error {
	return n.ping(ctx, n.url, "")
}

func (n *HTTPNotifier) Failure(ctx context.Context, runErr error) error {
	body := ""
	if runErr != nil {
		body = runErr.Error()
		if len(body) > maxFailureBody {
			body = strings.ToValidUTF8(body[:maxFailureBody], "")
		}
	}
	target, err := url.JoinPath(n.url, "fail")
	if err != nil {
		return fmt.Errorf("build failure url: %w", err)
	}
	return n.ping(ctx, target, body)
}

func (n *HTTPNotifier) ping(ctx context.Context, target, body string) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	method := http.MethodGet
	var reader io.Reader
	if body != "" {
		method = http.MethodPost
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build heartbeat request: %w", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.WarnContext(ctx, "heartbeat ping failed", "url", target, "error", err)
		return fmt.Errorf("heartbeat ping: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		n.logger.WarnContext(ctx, "heartbeat ping rejected", "url", target, "status", resp.StatusCode)
		return fmt.Errorf("heartbeat ping: status %d", resp.StatusCode)
	}

	n.logger.DebugContext(ctx, "heartbeat sent", "url", target)
	return nil
}

// Noop discards heartbeats when no URL is configured.
type Noop struct{}

func (Noop) Success(context.Context) error        { return nil }
func (Noop) Failure(context.Context, error) error { return nil }

// New returns an HTTPNotifier for url, or Noop when url is empty.
func New(client *http.Client, url string, timeout time.Duration, logger *slog.Logger) Notifier {
	if url == "" {
		return Noop{}
	}
	return NewHTTPNotifier(client, url, timeout, logger)
}
