package bootstrap

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/driver"
	"github.com/TheStalwart/phoronix-rss-augmented/handler"
	"github.com/TheStalwart/phoronix-rss-augmented/metrics"
	"github.com/TheStalwart/phoronix-rss-augmented/notifier"
	"github.com/TheStalwart/phoronix-rss-augmented/reporter"
	"github.com/TheStalwart/phoronix-rss-augmented/service"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/html_parser"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config        *config.Config
	ConfigManager *config.ConfigManager
	Logger        *slog.Logger
	Metrics       *metrics.Collector
	Reaper        *cache.Reaper
	JobHandler    handler.JobHandler
	HealthHandler *handler.HealthHandler
	FeedHandler   *handler.FeedHandler
}

// Options selects the optional parts of the wiring.
type Options struct {
	// Serve adds the Go runtime and process collectors to the registry.
	Serve       bool
	OTelEnabled bool
}

// BuildDependencies constructs all application dependencies.
// Returns a cleanup function that should be deferred.
func BuildDependencies(cfg *config.Config, log *slog.Logger, opts Options) (*Dependencies, func(), error) {
	collector := metrics.NewCollector(opts.Serve, log)
	httpClient := driver.NewHTTPClient(cfg.HTTP)

	fetcherOpts := []driver.FetcherOption{driver.WithFetchObserver(collector)}
	if cfg.Fetch.RespectRobots {
		fetcherOpts = append(fetcherOpts, driver.WithRobots(driver.NewRobotsChecker(httpClient, cfg.HTTP.UserAgent, log)))
	}
	fetcher := driver.NewHTTPFetcher(httpClient, cfg.Fetch, cfg.HTTP, log, fetcherOpts...)

	fileCache := cache.NewFileCache(cfg.Cache.Dir, log, cache.WithObserver(collector))
	reaper := cache.NewReaper(cfg.Cache.Dir, log, cache.WithEvictionObserver(collector))

	pipeline := html_parser.NewPipeline(html_parser.PipelineConfig{
		Origin:      cfg.Feed.SiteOrigin,
		AdClass:     cfg.Sanitize.AdClass,
		StripUnsafe: cfg.Sanitize.PolicyEnabled,
	}, log)

	configManager := config.NewConfigManager(cfg, log)
	augment := service.NewAugmentService(configManager, fetcher, fileCache, reaper, pipeline, log)

	cleanup := func() {}
	var lock handler.RunLock = driver.NoopLock{}
	if cfg.Redis.URL != "" {
		redisLock, err := driver.NewRedisLockWithURL(cfg.Redis.URL, cfg.Redis.LockKey, cfg.Redis.LockTTL, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create run lock: %w", err)
		}
		lock = redisLock
		cleanup = func() {
			if err := redisLock.Close(); err != nil {
				log.Warn("failed to close redis client", "error", err)
			}
		}
	}

	heartbeat := notifier.New(httpClient, cfg.Secrets.HeartbeatURL, cfg.Secrets.HeartbeatTimeout, log)

	var errReporter reporter.Reporter = reporter.NewLogReporter(log)
	if opts.OTelEnabled {
		errReporter = reporter.NewOTelReporter(otel.GetTracerProvider(), log)
	}

	var textfile string
	if cfg.Metrics.Enabled {
		textfile = cfg.Metrics.Textfile
	}

	jobHandler := handler.NewJobHandler(augment, lock, heartbeat, errReporter, collector, textfile, log)

	return &Dependencies{
		Config:        cfg,
		ConfigManager: configManager,
		Logger:        log,
		Metrics:       collector,
		Reaper:        reaper,
		JobHandler:    jobHandler,
		HealthHandler: handler.NewHealthHandler(jobHandler),
		FeedHandler:   handler.NewFeedHandler(cfg.Feed.OutputPath),
	}, cleanup, nil
}
