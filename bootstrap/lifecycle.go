package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/orchestrator"
	apperrors "github.com/TheStalwart/phoronix-rss-augmented/utils/errors"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/otel"
)

const otelShutdownTimeout = 5 * time.Second

// App is a loaded configuration with telemetry and wired dependencies.
type App struct {
	Deps *Dependencies
	OTel otel.Config

	cleanup      func()
	otelShutdown otel.ShutdownFunc
}

// NewApp loads the configuration, installs telemetry and the process logger
// and builds the dependencies. Close must be called when done.
func NewApp(ctx context.Context, overrides config.Overrides, serve bool, out io.Writer) (*App, error) {
	cfg, err := config.LoadConfigWithOverrides(overrides)
	if err != nil {
		return nil, apperrors.NewAppContextError(apperrors.CodeConfig, "invalid configuration",
			"bootstrap", "app", "load_config", err, nil)
	}

	otelCfg := otel.ConfigFromEnv(cfg.Secrets.ErrorReportingEndpoint)
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelCfg.ExportLogs = false
		otelShutdown = func(context.Context) error { return nil }
	}

	logCfg := logger.LoadConfigFromEnv()
	logCfg.OTelEnabled = otelCfg.ExportLogs
	log := logger.New(out, logCfg)
	slog.SetDefault(log)

	log.Debug("configuration loaded",
		"feed_url", cfg.Feed.SourceURL,
		"output_path", cfg.Feed.OutputPath,
		"cache_dir", cfg.Cache.Dir,
		"missing_article_policy", cfg.Feed.MissingArticlePolicy,
		"otel_enabled", otelCfg.Enabled,
		"run_lock", cfg.Redis.URL != "")

	deps, cleanup, err := BuildDependencies(cfg, log, Options{Serve: serve, OTelEnabled: otelCfg.Enabled})
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("failed to build dependencies: %w", err)
	}

	return &App{
		Deps:         deps,
		OTel:         otelCfg,
		cleanup:      cleanup,
		otelShutdown: otelShutdown,
	}, nil
}

// Close releases the run lock client and flushes telemetry.
func (a *App) Close() {
	a.cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), otelShutdownTimeout)
	defer cancel()
	if err := a.otelShutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown OpenTelemetry: %v\n", err)
	}
}

// RunOnce performs one run. A run skipped because the lock is held returns
// a nil result and no error.
func (a *App) RunOnce(ctx context.Context) (*domain.RunResult, error) {
	return a.Deps.JobHandler.RunOnce(ctx)
}

// Reap evicts article cache entries older than the article TTL.
func (a *App) Reap(ctx context.Context) (cache.EvictResult, error) {
	ctx = logger.WithOperation(ctx, "reap")
	return a.Deps.Reaper.Evict(ctx, a.Deps.Config.Cache.ItemTTL)
}

// Serve runs the augmentation on an interval and serves the feed, health and
// metrics endpoints until ctx is cancelled or a termination signal arrives.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := a.Deps
	cfg := deps.Config
	log := deps.Logger

	runner := orchestrator.NewJobRunner(orchestrator.JobConfig{
		Name:           "augment",
		Interval:       cfg.Server.RunInterval,
		RetryAfter:     cfg.Server.RetryAfter,
		Retryable:      apperrors.IsRetryable,
		RunImmediately: true,
	}, a.scheduledRun, log)

	server := NewHTTPServer(deps, a.OTel.Enabled, a.OTel.ServiceName)
	serverErr := StartHTTPServer(server, cfg.Server.Port, log)
	runner.Start(ctx)

	log.Info("serve mode started",
		"port", cfg.Server.Port,
		"interval", cfg.Server.RunInterval,
		"feed_path", feedPath)

	var err error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-serverErr:
	}

	runner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error("error shutting down HTTP server", "error", shutdownErr)
	}

	log.Info("serve mode stopped")
	if err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// scheduledRun reloads the secrets file so a changed public URL is picked up
// without a restart, then runs once.
func (a *App) scheduledRun(ctx context.Context) error {
	if _, err := a.Deps.ConfigManager.ReloadSecrets(); err != nil {
		a.Deps.Logger.WarnContext(ctx, "failed to reload secrets, keeping previous values", "error", err)
	}
	_, err := a.Deps.JobHandler.RunOnce(ctx)
	return err
}
