// ABOUTME: Error classification for run failures
// ABOUTME: Maps domain errors onto AppContextError codes and decides retryability
package errors

import (
	"context"
	"errors"
	"net"
	"syscall"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

// Classify wraps err in an AppContextError whose code reflects the domain
// error found in its chain. An AppContextError already in the chain is
// returned as is.
func Classify(err error, layer, component, operation string) *AppContextError {
	if err == nil {
		return nil
	}
	var appErr *AppContextError
	if errors.As(err, &appErr) {
		return appErr
	}

	ctx := map[string]any{}
	code := CodeInternal
	message := "run failed"

	var fetchErr *domain.FetchError
	var parseErr *domain.ParseError
	switch {
	case errors.Is(err, context.Canceled):
		code, message = CodeCancelled, "run cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		code, message = CodeTimeout, "run timed out"
	case errors.As(err, &fetchErr):
		code, message = CodeFetch, "fetch failed"
		ctx["url"] = fetchErr.URL
		ctx["attempts"] = fetchErr.Attempts
		if fetchErr.StatusCode != 0 {
			ctx["status"] = fetchErr.StatusCode
		}
	case errors.As(err, &parseErr):
		code, message = CodeParse, "source feed is malformed"
		ctx["source"] = parseErr.Source
		ctx["excerpt"] = parseErr.Excerpt
	case errors.Is(err, domain.ErrChannelNotFound):
		code, message = CodeParse, "source feed has no channel"
	case errors.Is(err, domain.ErrArticleNotFound), errors.Is(err, domain.ErrArticleContentEmpty):
		code, message = CodeArticle, "article extraction failed"
	case errors.Is(err, domain.ErrOutputVerification):
		code, message = CodeVerification, "output verification failed"
	}

	return NewAppContextError(code, message, layer, component, operation, err, ctx)
}

// IsRetryable determines if an error may clear up on a later attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context cancellation is never retryable (user initiated)
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, domain.ErrRobotsDisallowed) {
		return false
	}

	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.StatusCode != 0 {
			return IsRetryableHTTPStatus(fetchErr.StatusCode)
		}
		if fetchErr.Err != nil {
			return IsRetryable(fetchErr.Err)
		}
		return false
	}

	var appErr *AppContextError
	if errors.As(err, &appErr) {
		return appErr.IsRetryable()
	}

	var opNetErr *net.OpError
	if errors.As(err, &opNetErr) {
		if errno, ok := opNetErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
		if opNetErr.Timeout() {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

// IsRetryableHTTPStatus reports whether a status code indicates a
// temporary condition on the remote side.
func IsRetryableHTTPStatus(status int) bool {
	switch {
	case status >= 500 && status <= 599:
		return true
	case status == 408, status == 429:
		return true
	default:
		return false
	}
}
