package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/TheStalwart/phoronix-rss-augmented/cache"
	"github.com/TheStalwart/phoronix-rss-augmented/config"
	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/test/mocks"
	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
)

const (
	linkA = "https://www.phoronix.com/news/A"
	linkB = "https://www.phoronix.com/news/B"
)

const runSource = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Phoronix</title>` +
	`<item><title>A</title><link>` + linkA + `</link><description>teaser A</description></item>` +
	`<item><title>B</title><link>` + linkB + `</link><description>teaser B</description></item>` +
	`<item><title>A again</title><link>` + linkA + `</link><description>teaser A2</description></item>` +
	`</channel></rss>`

func articlePage(body string) []byte {
	return []byte(`<html><body><nav>menu</nav><article>` + body + `</article></body></html>`)
}

func newTestConfig(t *testing.T, policy domain.MissingArticlePolicy) *config.Config {
	t.Helper()
	return &config.Config{
		Feed: config.FeedConfig{
			SourceURL:            "https://www.phoronix.com/rss.php",
			OutputPath:           filepath.Join(t.TempDir(), "out", "feed.xml"),
			SiteOrigin:           "https://www.phoronix.com",
			MissingArticlePolicy: string(policy),
		},
		Cache: config.CacheConfig{
			SourceTTL: 55 * time.Minute,
			ItemTTL:   24 * time.Hour,
		},
		Secrets: config.SecretsConfig{OutputPublicURL: selfURL},
	}
}

type serviceMocks struct {
	configs   *mocks.MockConfigProvider
	fetcher   *mocks.MockFetcher
	cache     *mocks.MockContentCache
	evictor   *mocks.MockCacheEvictor
	sanitizer *mocks.MockSanitizer
}

func newServiceMocks(t *testing.T, cfg *config.Config) (*serviceMocks, AugmentService) {
	ctrl := gomock.NewController(t)
	m := &serviceMocks{
		configs:   mocks.NewMockConfigProvider(ctrl),
		fetcher:   mocks.NewMockFetcher(ctrl),
		cache:     mocks.NewMockContentCache(ctrl),
		evictor:   mocks.NewMockCacheEvictor(ctrl),
		sanitizer: mocks.NewMockSanitizer(ctrl),
	}
	m.configs.EXPECT().GetConfig().Return(cfg).AnyTimes()
	svc := NewAugmentService(m.configs, m.fetcher, m.cache, m.evictor, m.sanitizer, testLogger())
	return m, svc
}

func (m *serviceMocks) expectSource(cfg *config.Config, content string) {
	m.cache.EXPECT().
		Lookup(gomock.Any(), cache.SourceKey, cache.SourcePolicy(cfg.Cache.SourceTTL), gomock.Any()).
		Return(cache.Result{Content: []byte(content), Outcome: cache.OutcomeHit}, nil).
		Times(1)
}

func (m *serviceMocks) expectArticle(cfg *config.Config, link string, page []byte, outcome cache.Outcome) {
	m.cache.EXPECT().
		Lookup(gomock.Any(), cache.ArticleKey(link), cache.ArticlePolicy(cfg.Cache.ItemTTL), gomock.Any()).
		Return(cache.Result{Content: page, Outcome: outcome}, nil).
		Times(1)
}

// passthroughSanitizer returns the extracted markup unchanged.
func (m *serviceMocks) passthroughSanitizer(times int) {
	m.sanitizer.EXPECT().
		Sanitize(gomock.Any()).
		DoAndReturn(func(markup string) (string, error) { return markup, nil }).
		Times(times)
}

func readOutput(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Feed.OutputPath)
	require.NoError(t, err)
	return string(data)
}

func TestAugmentService_Run(t *testing.T) {
	cfg := newTestConfig(t, domain.MissingArticleAbort)
	m, svc := newServiceMocks(t, cfg)

	m.expectSource(cfg, runSource)
	m.expectArticle(cfg, linkA, articlePage("<p>Body A</p>"), cache.OutcomeMiss)
	m.expectArticle(cfg, linkB, articlePage("<p>Body B</p>"), cache.OutcomeHit)
	m.passthroughSanitizer(2)
	m.evictor.EXPECT().Evict(gomock.Any(), cfg.Cache.ItemTTL).Return(cache.EvictResult{Scanned: 4, Evicted: 2}, nil)

	ctx := logger.WithRunID(context.Background(), "run-42")
	result, err := svc.Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunID)
	assert.Equal(t, 3, result.Items)
	assert.Equal(t, 3, result.Augmented)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.ArticleHits)
	assert.Equal(t, 1, result.ArticleMisses)
	assert.Equal(t, 2, result.Evicted)
	assert.Equal(t, cfg.Feed.OutputPath, result.OutputPath)

	out := readOutput(t, cfg)
	assert.Equal(t, len(out), result.OutputBytes)
	assert.Equal(t, 2, strings.Count(out, `<description><![CDATA[<article><p>Body A</p></article>]]></description>`))
	assert.Contains(t, out, `<description><![CDATA[<article><p>Body B</p></article>]]></description>`)
	assert.Contains(t, out, `<atom:link href="`+selfURL+`" rel="self" type="application/rss+xml"/>`)
	assert.NotContains(t, out, "teaser")

	links, err := NewFeedAssembler(selfURL, testLogger()).Links([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{linkA, linkB, linkA}, links)
}

func TestAugmentService_Run_AssignsRunID(t *testing.T) {
	cfg := newTestConfig(t, domain.MissingArticleAbort)
	m, svc := newServiceMocks(t, cfg)

	m.expectSource(cfg, `<rss><channel><title>empty</title></channel></rss>`)
	m.evictor.EXPECT().Evict(gomock.Any(), gomock.Any()).Return(cache.EvictResult{}, nil)

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Len(t, result.RunID, 36)
	assert.Equal(t, 0, result.Items)
	assert.Contains(t, readOutput(t, cfg), `<channel><atom:link`)
}

func TestAugmentService_Run_SourceFetchFailure(t *testing.T) {
	cfg := newTestConfig(t, domain.MissingArticleAbort)
	m, svc := newServiceMocks(t, cfg)

	fetchErr := &domain.FetchError{URL: cfg.Feed.SourceURL, StatusCode: 503, Attempts: 3, Exhausted: true}
	m.fetcher.EXPECT().Fetch(gomock.Any(), cfg.Feed.SourceURL).Return(nil, fetchErr).Times(1)
	m.cache.EXPECT().
		Lookup(gomock.Any(), cache.SourceKey, gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, key string, policy cache.Policy, fetch cache.FetchFunc) (cache.Result, error) {
			content, err := fetch(ctx)
			return cache.Result{Content: content, Outcome: cache.OutcomeMiss}, err
		})

	result, err := svc.Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrFetchExhausted))
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Items)
	_, statErr := os.Stat(cfg.Feed.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "no output on failure")
}

func TestAugmentService_Run_MissingArticle(t *testing.T) {
	noArticle := []byte(`<html><body><div class="content">moved</div></body></html>`)
	emptyPage := []byte(`<html><head></head><body></body></html>`)
	paragraph := "<p>" + strings.Repeat("Readable article text about Linux graphics drivers, kernel releases, and benchmarks. ", 6) + "</p>"
	readable := []byte(`<html><head><title>B</title></head><body><div id="main">` +
		strings.Repeat(paragraph, 3) + `</div></body></html>`)

	tests := map[string]struct {
		policy       domain.MissingArticlePolicy
		pageB        []byte
		sanitized    int
		evict        bool
		wantErr      error
		wantSkipped  int
		wantContains []string
	}{
		"abort": {
			policy:    domain.MissingArticleAbort,
			pageB:     noArticle,
			sanitized: 1,
			wantErr:   domain.ErrArticleNotFound,
		},
		"skip keeps original description": {
			policy:       domain.MissingArticleSkip,
			pageB:        noArticle,
			sanitized:    1,
			evict:        true,
			wantSkipped:  1,
			wantContains: []string{"<description>teaser B</description>"},
		},
		"readability extracts the body": {
			policy:       domain.MissingArticleReadability,
			pageB:        readable,
			sanitized:    2,
			evict:        true,
			wantContains: []string{"Readable article text"},
		},
		"readability failure aborts": {
			policy:    domain.MissingArticleReadability,
			pageB:     emptyPage,
			sanitized: 1,
			wantErr:   domain.ErrArticleNotFound,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := newTestConfig(t, tc.policy)
			m, svc := newServiceMocks(t, cfg)

			m.expectSource(cfg, runSource)
			m.expectArticle(cfg, linkA, articlePage("<p>Body A</p>"), cache.OutcomeHit)
			m.expectArticle(cfg, linkB, tc.pageB, cache.OutcomeHit)
			m.passthroughSanitizer(tc.sanitized)
			if tc.evict {
				m.evictor.EXPECT().Evict(gomock.Any(), gomock.Any()).Return(cache.EvictResult{}, nil)
			}

			result, err := svc.Run(context.Background())

			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.wantErr))
				assert.Contains(t, err.Error(), "item 2 ("+linkB+")")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantSkipped, result.Skipped)
			assert.Equal(t, 3-tc.wantSkipped, result.Augmented)
			out := readOutput(t, cfg)
			for _, want := range tc.wantContains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestAugmentService_Run_EvictionFailureIsNotFatal(t *testing.T) {
	cfg := newTestConfig(t, domain.MissingArticleAbort)
	m, svc := newServiceMocks(t, cfg)

	m.expectSource(cfg, runSource)
	m.expectArticle(cfg, linkA, articlePage("<p>A</p>"), cache.OutcomeHit)
	m.expectArticle(cfg, linkB, articlePage("<p>B</p>"), cache.OutcomeHit)
	m.passthroughSanitizer(2)
	m.evictor.EXPECT().Evict(gomock.Any(), gomock.Any()).Return(cache.EvictResult{}, errors.New("permission denied"))

	result, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Evicted)
}

func TestAugmentService_Run_Cancelled(t *testing.T) {
	cfg := newTestConfig(t, domain.MissingArticleAbort)
	m, svc := newServiceMocks(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	m.cache.EXPECT().
		Lookup(gomock.Any(), cache.SourceKey, gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, cache.Policy, cache.FetchFunc) (cache.Result, error) {
			cancel()
			return cache.Result{Content: []byte(runSource), Outcome: cache.OutcomeHit}, nil
		})

	_, err := svc.Run(ctx)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAugmentService_Run_MalformedSource(t *testing.T) {
	cfg := newTestConfig(t, domain.MissingArticleAbort)
	m, svc := newServiceMocks(t, cfg)
	m.expectSource(cfg, "<rss><channel>")

	_, err := svc.Run(context.Background())

	require.Error(t, err)
	var perr *domain.ParseError
	assert.True(t, errors.As(err, &perr))
}
