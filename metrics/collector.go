// ABOUTME: This file exposes Prometheus metrics for cache, fetch, eviction and run outcomes
// ABOUTME: A private registry is written to a textfile after runs and served on /metrics
package metrics

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

const namespace = "feedaug"

// Collector owns the registry and every metric of the process. It
// implements the observer interfaces of the cache, reaper and fetcher.
type Collector struct {
	registry *prometheus.Registry
	logger   *slog.Logger

	cacheLookups  *prometheus.CounterVec
	fetchAttempts *prometheus.CounterVec
	evictions     *prometheus.CounterVec
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	items         prometheus.Gauge
	lastSuccess   prometheus.Gauge
}

// NewCollector registers all metrics on a fresh registry. Process and Go
// runtime collectors are added when withRuntime is set.
func NewCollector(withRuntime bool, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by policy and outcome",
			},
			[]string{"policy", "outcome"},
		),
		fetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "HTTP fetch attempts by status class",
			},
			[]string{"status"},
		),
		evictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evictions_total",
				Help:      "Cache entries considered for eviction by result",
			},
			[]string{"result"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Completed runs by status",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of augmentation runs in seconds",
				Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
		),
		items: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "items_total",
				Help:      "Items in the last assembled feed",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),
	}

	c.registry.MustRegister(
		c.cacheLookups,
		c.fetchAttempts,
		c.evictions,
		c.runs,
		c.runDuration,
		c.items,
		c.lastSuccess,
	)
	if withRuntime {
		c.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return c
}

func (c *Collector) ObserveCacheLookup(policy string, outcome cache.Outcome) {
	c.cacheLookups.WithLabelValues(policy, string(outcome)).Inc()
}

func (c *Collector) ObserveFetchAttempt(status string) {
	c.fetchAttempts.WithLabelValues(status).Inc()
}

func (c *Collector) ObserveEviction(result string) {
	c.evictions.WithLabelValues(result).Inc()
}

// ObserveRun records the outcome of one run. A nil result with an error
// counts as a failure.
func (c *Collector) ObserveRun(result *domain.RunResult, err error) {
	if err != nil {
		c.runs.WithLabelValues("failure").Inc()
		if result != nil && result.Duration > 0 {
			c.runDuration.Observe(result.Duration.Seconds())
		}
		return
	}
	c.runs.WithLabelValues("success").Inc()
	if result == nil {
		return
	}
	c.runDuration.Observe(result.Duration.Seconds())
	c.items.Set(float64(result.Items))
	c.lastSuccess.Set(float64(result.StartedAt.Add(result.Duration).Unix()))
}

// ObserveSkippedRun counts a run that found the lock held.
func (c *Collector) ObserveSkippedRun() {
	c.runs.WithLabelValues("locked").Inc()
}

// WriteTextfile writes the registry in text exposition format for the
// node_exporter textfile collector. The parent directory is created.
func (c *Collector) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	c.logger.Debug("metrics textfile written", "path", path)
	return nil
}

// Handler serves the registry for scraping.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
