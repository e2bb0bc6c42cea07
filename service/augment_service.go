package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	apperrors "github.com/TheStalwart/phoronix-rss-augmented/utils/errors"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/html_parser"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
)

const outputPerm = 0o644

var tracer = otel.Tracer("github.com/TheStalwart/phoronix-rss-augmented/service")

// augmentService implementation.
type augmentService struct {
	configs   ConfigProvider
	fetcher   Fetcher
	cache     ContentCache
	evictor   CacheEvictor
	sanitizer Sanitizer
	logger    *slog.Logger
	now       func() time.Time
}

// NewAugmentService creates the service that performs augmentation runs.
func NewAugmentService(
	configs ConfigProvider,
	fetcher Fetcher,
	contentCache ContentCache,
	evictor CacheEvictor,
	sanitizer Sanitizer,
	logger *slog.Logger,
) AugmentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &augmentService{
		configs:   configs,
		fetcher:   fetcher,
		cache:     contentCache,
		evictor:   evictor,
		sanitizer: sanitizer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run fetches the source feed, replaces every item description with the
// sanitized article body, verifies and writes the output, then evicts
// expired article entries. Items are processed sequentially in source
// order; a link that appears more than once is fetched once.
func (s *augmentService) Run(ctx context.Context) (*domain.RunResult, error) {
	cfg := s.configs.GetConfig()

	runID := logger.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = logger.WithRunID(ctx, runID)
	}
	result := &domain.RunResult{
		RunID:      runID,
		StartedAt:  s.now(),
		OutputPath: cfg.Feed.OutputPath,
	}

	ctx, span := tracer.Start(ctx, "augment.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("feed.url", cfg.Feed.SourceURL),
	)

	s.logger.InfoContext(ctx, "run started",
		"feed_url", cfg.Feed.SourceURL,
		"output", cfg.Feed.OutputPath,
		"missing_article_policy", cfg.Feed.MissingArticlePolicy)

	err := s.run(ctx, cfg, result)
	result.Duration = s.now().Sub(result.StartedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.ErrorContext(ctx, "run failed", "error", err, "duration", result.Duration)
		return result, err
	}

	span.SetAttributes(
		attribute.Int("feed.items", result.Items),
		attribute.Int("feed.augmented", result.Augmented),
	)
	s.logger.InfoContext(ctx, "run finished",
		"items", result.Items,
		"augmented", result.Augmented,
		"skipped", result.Skipped,
		"article_cache_hits", result.ArticleHits,
		"article_cache_misses", result.ArticleMisses,
		"evicted", result.Evicted,
		"output_bytes", result.OutputBytes,
		"duration", result.Duration)
	return result, nil
}

func (s *augmentService) run(ctx context.Context, cfg *config.Config, result *domain.RunResult) error {
	src, err := s.cache.Lookup(ctx, cache.SourceKey, cache.SourcePolicy(cfg.Cache.SourceTTL), s.fetch(cfg.Feed.SourceURL))
	if err != nil {
		return fmt.Errorf("source feed: %w", err)
	}

	assembler := NewFeedAssembler(cfg.PublicURL(), s.logger)
	items, err := assembler.Items(src.Content)
	if err != nil {
		return err
	}
	result.Items = len(items)
	s.logger.InfoContext(ctx, "source feed loaded", "items", len(items), "cache", src.Outcome)

	policy := domain.MissingArticlePolicy(cfg.Feed.MissingArticlePolicy)
	bodies := make(map[string]string, len(items))
	skipped := make(map[string]bool)
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if item.Link == "" {
			s.logger.WarnContext(ctx, "item has no link, keeping description", "index", i+1, "title", item.Title)
			continue
		}
		if _, done := bodies[item.Link]; done || skipped[item.Link] {
			continue
		}

		body, outcome, err := s.article(ctx, cfg, policy, item.Link)
		if outcome == cache.OutcomeHit {
			result.ArticleHits++
		} else if outcome != "" {
			result.ArticleMisses++
		}
		if err != nil {
			if errors.Is(err, domain.ErrArticleNotFound) && policy == domain.MissingArticleSkip {
				s.logger.WarnContext(ctx, "article not found, keeping description",
					"index", i+1, "link", item.Link, "title", item.Title)
				skipped[item.Link] = true
				continue
			}
			return fmt.Errorf("item %d (%s): %w", i+1, item.Link, err)
		}
		bodies[item.Link] = body
	}

	for _, item := range items {
		if _, ok := bodies[item.Link]; ok {
			result.Augmented++
		} else {
			result.Skipped++
		}
	}

	out, err := assembler.Assemble(src.Content, bodies)
	if err != nil {
		return err
	}
	if err := VerifyOutput(out, items); err != nil {
		return err
	}
	if err := cache.WriteFileAtomic(cfg.Feed.OutputPath, out, outputPerm); err != nil {
		return apperrors.NewAppContextError(apperrors.CodeOutput, "write output feed",
			"service", "augmenter", "write_output", err,
			map[string]any{"path": cfg.Feed.OutputPath})
	}
	result.OutputBytes = len(out)
	s.logger.InfoContext(ctx, "output written", "path", cfg.Feed.OutputPath, "bytes", len(out))

	evicted, err := s.evictor.Evict(ctx, cfg.Cache.ItemTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "cache eviction failed", "error", err)
	}
	result.Evicted = evicted.Evicted
	return nil
}

// article returns the sanitized body for link together with the cache
// outcome of the page lookup. The outcome is empty when the lookup failed.
func (s *augmentService) article(ctx context.Context, cfg *config.Config, policy domain.MissingArticlePolicy, link string) (string, cache.Outcome, error) {
	page, err := s.cache.Lookup(ctx, cache.ArticleKey(link), cache.ArticlePolicy(cfg.Cache.ItemTTL), s.fetch(link))
	if err != nil {
		return "", "", err
	}

	markup, err := html_parser.ExtractArticle(page.Content)
	if errors.Is(err, domain.ErrArticleNotFound) && policy == domain.MissingArticleReadability {
		s.logger.InfoContext(ctx, "article element missing, using readability", "link", link)
		var rerr error
		markup, rerr = html_parser.ExtractWithReadability(page.Content, link)
		if rerr != nil {
			return "", page.Outcome, fmt.Errorf("%w (readability: %v)", err, rerr)
		}
		err = nil
	}
	if err != nil {
		return "", page.Outcome, err
	}

	body, err := s.sanitizer.Sanitize(markup)
	if err != nil {
		return "", page.Outcome, err
	}
	return body, page.Outcome, nil
}

func (s *augmentService) fetch(url string) cache.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		return s.fetcher.Fetch(ctx, url)
	}
}
