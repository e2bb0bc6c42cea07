// ABOUTME: This file implements a paced retry loop with exponential backoff
// ABOUTME: Every attempt is preceded by a fixed delay; failed attempts add backoff on top
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	// PreAttemptDelay is slept before every attempt, including the first.
	PreAttemptDelay time.Duration
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	JitterFactor    float64
}

type ErrorClassifier func(error) bool

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

type Retrier struct {
	config      RetryConfig
	isRetryable ErrorClassifier
	logger      *slog.Logger
	sleep       Sleeper
}

type Option func(*Retrier)

// WithSleeper replaces the context-aware timer wait, mainly for tests.
func WithSleeper(s Sleeper) Option {
	return func(r *Retrier) {
		r.sleep = s
	}
}

func NewRetrier(config RetryConfig, classifier ErrorClassifier, logger *slog.Logger, opts ...Option) *Retrier {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	r := &Retrier{
		config:      config,
		isRetryable: classifier,
		logger:      logger,
		sleep:       SleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SleepContext blocks for d unless ctx is cancelled first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Retrier) Do(ctx context.Context, operation func() error) error {
	_, err := r.DoAttempts(ctx, func(int) error { return operation() })
	return err
}

// DoAttempts runs operation until it succeeds, returns a non-retryable error,
// or MaxAttempts is reached. It reports how many attempts were made. The
// error of the final attempt is wrapped so errors.As can recover it.
func (r *Retrier) DoAttempts(ctx context.Context, operation func(attempt int) error) (int, error) {
	start := time.Now()
	var lastErr error
	var totalWaitTime time.Duration

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if r.config.PreAttemptDelay > 0 {
			totalWaitTime += r.config.PreAttemptDelay
			if err := r.sleep(ctx, r.config.PreAttemptDelay); err != nil {
				return attempt - 1, r.cancelled(ctx, attempt, start, lastErr)
			}
		} else if err := ctx.Err(); err != nil {
			return attempt - 1, r.cancelled(ctx, attempt, start, lastErr)
		}

		attemptStart := time.Now()
		lastErr = operation(attempt)
		attemptDuration := time.Since(attemptStart)

		if lastErr == nil {
			if attempt > 1 {
				r.logger.Info("operation succeeded after retry",
					"attempt", attempt,
					"total_attempts", r.config.MaxAttempts,
					"attempt_duration_ms", attemptDuration.Milliseconds(),
					"total_duration_ms", time.Since(start).Milliseconds(),
					"total_wait_time_ms", totalWaitTime.Milliseconds())
			} else {
				r.logger.Debug("operation succeeded on first attempt",
					"attempt_duration_ms", attemptDuration.Milliseconds())
			}
			return attempt, nil
		}

		if ctx.Err() != nil {
			return attempt, r.cancelled(ctx, attempt, start, lastErr)
		}

		isRetryable := r.isRetryable == nil || r.isRetryable(lastErr)
		r.logger.Warn("operation attempt failed",
			"attempt", attempt,
			"error", lastErr,
			"retryable", isRetryable,
			"attempt_duration_ms", attemptDuration.Milliseconds())

		if attempt == r.config.MaxAttempts || !isRetryable {
			r.logger.Error("operation failed permanently",
				"attempt", attempt,
				"error", lastErr,
				"retryable", isRetryable,
				"total_duration_ms", time.Since(start).Milliseconds(),
				"total_wait_time_ms", totalWaitTime.Milliseconds())
			return attempt, fmt.Errorf("operation failed after %d attempt(s): %w", attempt, lastErr)
		}

		delay := r.calculateDelay(attempt)
		totalWaitTime += delay

		r.logger.Info("retry backoff wait",
			"attempt", attempt,
			"retry_delay_ms", delay.Milliseconds(),
			"total_wait_time_ms", totalWaitTime.Milliseconds())

		if err := r.sleep(ctx, delay); err != nil {
			return attempt, r.cancelled(ctx, attempt, start, lastErr)
		}
	}

	return r.config.MaxAttempts, fmt.Errorf("operation failed after %d attempt(s): %w", r.config.MaxAttempts, lastErr)
}

func (r *Retrier) cancelled(ctx context.Context, attempt int, start time.Time, lastErr error) error {
	r.logger.Error("retry cancelled by context",
		"attempt", attempt,
		"context_error", ctx.Err(),
		"last_error", lastErr,
		"total_duration_ms", time.Since(start).Milliseconds())
	return fmt.Errorf("retry cancelled: %w", ctx.Err())
}

// calculateDelay returns BaseDelay * BackoffFactor^(attempt-1), capped at
// MaxDelay when set, with optional jitter.
func (r *Retrier) calculateDelay(attempt int) time.Duration {
	factor := r.config.BackoffFactor
	if factor < 1 {
		factor = 1
	}
	delay := float64(r.config.BaseDelay) * math.Pow(factor, float64(attempt-1))

	if r.config.MaxDelay > 0 && delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	if r.config.JitterFactor > 0 {
		jitter := 1.0 + (rand.Float64()-0.5)*r.config.JitterFactor
		delay *= jitter
	}

	return time.Duration(delay)
}
