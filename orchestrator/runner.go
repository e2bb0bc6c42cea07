package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// JobConfig configures a job runner.
type JobConfig struct {
	Name     string
	Interval time.Duration
	// RetryAfter is the first delay before re-running a job whose error
	// satisfies Retryable. It doubles on each consecutive failure and is
	// capped at Interval.
	RetryAfter time.Duration
	Retryable  func(error) bool
	// RunImmediately runs once before the first tick.
	RunImmediately bool
}

// JobRunner runs one job on a fixed interval. Runs never overlap: the next
// tick is scheduled only after the previous run returned.
type JobRunner struct {
	config JobConfig
	fn     func(ctx context.Context) error
	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJobRunner(config JobConfig, fn func(ctx context.Context) error, logger *slog.Logger) *JobRunner {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobRunner{
		config: config,
		fn:     fn,
		logger: logger,
	}
}

// Start starts the job runner in a goroutine.
func (r *JobRunner) Start(ctx context.Context) {
	jobCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(jobCtx)
	}()
}

// Stop cancels the running job and waits for it to return.
func (r *JobRunner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *JobRunner) run(ctx context.Context) {
	var retry time.Duration
	delay := r.config.Interval
	if r.config.RunImmediately {
		delay, retry = r.runOnce(ctx, 0)
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "job stopped", "job", r.config.Name)
			return
		case <-timer.C:
			delay, retry = r.runOnce(ctx, retry)
			timer.Reset(delay)
		}
	}
}

// runOnce runs the job and returns the delay until the next run together
// with the current retry delay, which is zero unless a retryable error
// occurred.
func (r *JobRunner) runOnce(ctx context.Context, lastRetry time.Duration) (delay, retry time.Duration) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "panic in job runner", "job", r.config.Name, "panic", rec)
			delay, retry = r.config.Interval, 0
		}
	}()

	err := r.fn(ctx)
	switch {
	case err == nil:
		if lastRetry > 0 {
			r.logger.InfoContext(ctx, "job recovered, resuming normal interval", "job", r.config.Name)
		}
		return r.config.Interval, 0
	case ctx.Err() != nil:
		return r.config.Interval, 0
	case r.config.Retryable != nil && r.config.Retryable(err):
		retry = r.nextRetry(lastRetry)
		r.logger.WarnContext(ctx, "job failed, retrying early",
			"job", r.config.Name, "retry_in", retry, "error", err)
		return retry, retry
	default:
		r.logger.ErrorContext(ctx, "job failed", "job", r.config.Name, "error", err)
		return r.config.Interval, 0
	}
}

// nextRetry doubles the previous retry delay, capped at the interval.
func (r *JobRunner) nextRetry(current time.Duration) time.Duration {
	initial := r.config.RetryAfter
	if initial <= 0 {
		initial = time.Minute
	}

	next := initial
	if current > 0 {
		next = current * 2
	}
	if next > r.config.Interval {
		return r.config.Interval
	}
	return next
}
