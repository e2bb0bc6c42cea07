package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/notifier"
	"github.com/TheStalwart/phoronix-rss-augmented/reporter"
	"github.com/TheStalwart/phoronix-rss-augmented/service"
	apperrors "github.com/TheStalwart/phoronix-rss-augmented/utils/errors"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
)

// JobHandler implementation.
type jobHandler struct {
	augment  service.AugmentService
	lock     RunLock
	notifier notifier.Notifier
	reporter reporter.Reporter
	metrics  RunMetrics
	textfile string
	logger   *slog.Logger

	mu     sync.Mutex
	status RunStatus
	now    func() time.Time
}

// NewJobHandler wires a run to its lock, heartbeat, error reporter and
// metrics. metricsTextfile may be empty.
func NewJobHandler(
	augment service.AugmentService,
	lock RunLock,
	n notifier.Notifier,
	r reporter.Reporter,
	metrics RunMetrics,
	metricsTextfile string,
	logger *slog.Logger,
) JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if n == nil {
		n = notifier.Noop{}
	}
	if r == nil {
		r = reporter.NewLogReporter(logger)
	}
	return &jobHandler{
		augment:  augment,
		lock:     lock,
		notifier: n,
		reporter: r,
		metrics:  metrics,
		textfile: metricsTextfile,
		logger:   logger,
		now:      time.Now,
	}
}

// RunOnce performs a single run. A lock held elsewhere is not an error: the
// run is skipped and no heartbeat is sent. A call made while this handler is
// already running returns domain.ErrRunLocked. Fatal errors are returned as
// *apperrors.AppContextError after being reported.
func (h *jobHandler) RunOnce(ctx context.Context) (*domain.RunResult, error) {
	if logger.RunID(ctx) == "" {
		ctx = logger.WithRunID(ctx, uuid.NewString())
	}
	ctx = logger.WithOperation(ctx, "run")

	if !h.tryStart() {
		return nil, domain.ErrRunLocked
	}
	defer h.finish()

	lease, acquired, err := h.lock.Acquire(ctx)
	if err != nil {
		return nil, h.fail(ctx, nil, apperrors.NewAppContextError(
			apperrors.CodeInternal, "run lock unavailable", "handler", "job", "acquire_lock", err, nil))
	}
	if !acquired {
		h.logger.InfoContext(ctx, "run lock held by another process, skipping run")
		h.metrics.ObserveSkippedRun()
		h.writeTextfile(ctx)
		h.mu.Lock()
		h.status.LockedRuns++
		h.mu.Unlock()
		return nil, nil
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			h.logger.WarnContext(ctx, "failed to release run lock", "error", err)
		}
	}()

	result, err := h.augment.Run(ctx)
	if err != nil {
		return result, h.fail(ctx, result, apperrors.Classify(err, "service", "augment", "run"))
	}

	h.metrics.ObserveRun(result, nil)
	h.writeTextfile(ctx)
	h.recordSuccess(ctx, result)

	if err := h.notifier.Success(context.WithoutCancel(ctx)); err != nil {
		h.logger.WarnContext(ctx, "success heartbeat failed", "error", err)
	}

	h.logger.InfoContext(ctx, "run finished",
		"items", result.Items,
		"augmented", result.Augmented,
		"skipped", result.Skipped,
		"duration_ms", result.Duration.Milliseconds())
	return result, nil
}

// fail reports a fatal run error and sends the failure heartbeat.
func (h *jobHandler) fail(ctx context.Context, result *domain.RunResult, appErr *apperrors.AppContextError) error {
	detached := context.WithoutCancel(ctx)

	h.logger.ErrorContext(ctx, "run failed",
		"error", appErr.Cause,
		"error_code", appErr.Code,
		"error_id", appErr.ErrorID,
		"retryable", appErr.IsRetryable())

	h.metrics.ObserveRun(result, appErr)
	h.writeTextfile(ctx)
	h.reporter.Report(detached, appErr, appErr.Attributes())

	if err := h.notifier.Failure(detached, appErr); err != nil {
		h.logger.WarnContext(ctx, "failure heartbeat failed", "error", err)
	}

	h.mu.Lock()
	now := h.now()
	h.status.LastRunID = logger.RunID(ctx)
	h.status.LastRun = &now
	h.status.LastError = appErr.Error()
	h.status.LastCode = appErr.Code
	h.status.ErrorCount++
	h.mu.Unlock()

	return appErr
}

func (h *jobHandler) recordSuccess(ctx context.Context, result *domain.RunResult) {
	h.mu.Lock()
	defer h.mu.Unlock()
	now := h.now()
	h.status.LastRunID = result.RunID
	if h.status.LastRunID == "" {
		h.status.LastRunID = logger.RunID(ctx)
	}
	h.status.LastRun = &now
	h.status.LastSuccess = &now
	h.status.LastError = ""
	h.status.LastCode = ""
	h.status.Items = result.Items
	h.status.Skipped = result.Skipped
}

func (h *jobHandler) writeTextfile(ctx context.Context) {
	if h.textfile == "" {
		return
	}
	if err := h.metrics.WriteTextfile(h.textfile); err != nil {
		h.logger.WarnContext(ctx, "failed to write metrics textfile", "path", h.textfile, "error", err)
	}
}

func (h *jobHandler) tryStart() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status.IsRunning {
		return false
	}
	h.status.IsRunning = true
	return true
}

func (h *jobHandler) finish() {
	h.mu.Lock()
	h.status.IsRunning = false
	h.mu.Unlock()
}

// Status returns a copy of the latest run status.
func (h *jobHandler) Status() RunStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}
