// ABOUTME: Domain-level sentinel and typed errors for the feed augmentation run
// ABOUTME: These errors are used with errors.Is() / errors.As() for error type checking
package domain

import (
	"errors"
	"fmt"
)

// Article-related errors
var (
	// ErrArticleNotFound indicates the fetched page has no <article> element
	ErrArticleNotFound = errors.New("article element not found")

	// ErrArticleContentEmpty indicates the article element rendered to nothing
	ErrArticleContentEmpty = errors.New("article content is empty")
)

// Fetch-related errors
var (
	// ErrFetchExhausted indicates every fetch attempt failed
	ErrFetchExhausted = errors.New("fetch attempts exhausted")

	// ErrRobotsDisallowed indicates robots.txt forbids fetching the URL. Non-retryable.
	ErrRobotsDisallowed = errors.New("fetch disallowed by robots.txt")
)

// Feed-related errors
var (
	// ErrFeedMalformed indicates the source feed is not well-formed XML
	ErrFeedMalformed = errors.New("source feed is malformed")

	// ErrChannelNotFound indicates the feed root has no <channel> child
	ErrChannelNotFound = errors.New("feed channel not found")

	// ErrOutputVerification indicates the assembled feed does not round-trip
	ErrOutputVerification = errors.New("output feed verification failed")
)

// Run-related errors
var (
	// ErrRunLocked indicates another run holds the run lock
	ErrRunLocked = errors.New("another run is in progress")
)

// maxExcerptBytes bounds diagnostic payloads carried by errors.
const maxExcerptBytes = 2048

// FetchError is returned by the fetcher. While attempts remain it describes a
// transient failure; once attempts are exhausted Terminal reports true.
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Body       string
	Attempts   int
	Exhausted  bool
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %v after %d attempt(s)", e.URL, e.Err, e.Attempts)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFetchExhausted) match terminal fetch errors.
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchExhausted && e.Exhausted
}

// Terminal reports whether retries are exhausted.
func (e *FetchError) Terminal() bool {
	return e.Exhausted
}

// ParseError carries an excerpt of the content that failed to parse.
type ParseError struct {
	Source  string
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrFeedMalformed) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == ErrFeedMalformed
}

// Excerpt truncates diagnostic content to a bounded size.
func Excerpt(b []byte, limit int) string {
	if limit <= 0 || limit > maxExcerptBytes {
		limit = maxExcerptBytes
	}
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
