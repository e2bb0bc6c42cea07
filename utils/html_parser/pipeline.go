// ABOUTME: Ordered sanitization of a scraped <article> so it is valid inside an RSS description
// ABOUTME: Steps are named selection transforms; a panicking step is logged and skipped
package html_parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

// Step transforms the <article> selection in place. Missing targets are no-ops.
type Step struct {
	Name  string
	Apply func(article *goquery.Selection)
}

// PipelineConfig configures the default step list.
type PipelineConfig struct {
	// Origin prefixes root-relative links, e.g. "https://www.phoronix.com".
	Origin string
	// AdClass marks advertisement containers.
	AdClass string
	// StripUnsafe enables the bluemonday pass.
	StripUnsafe bool
}

type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// NewPipeline builds the default step order.
func NewPipeline(cfg PipelineConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	adClass := cfg.AdClass
	if adClass == "" {
		adClass = "ad"
	}

	steps := []Step{
		RemoveSelector("remove-scripts", "script"),
		RemoveSelector("remove-sharebar", "#sharebar"),
		RemoveSelector("remove-ads", "."+adClass),
		RemoveSelector("remove-page-selector", "#phx_article_page_selector"),
		RemoveSelector("remove-title-byline", "h1, div.author"),
		InlineCategoryImage(),
		AbsolutizeRootRelative(cfg.Origin),
		AbsolutizeProtocolRelative(),
		NeutralizeCommentCount(),
	}
	if cfg.StripUnsafe {
		steps = append(steps, StripUnsafeMarkup(NewFeedPolicy()))
	}
	steps = append(steps, StripXMLIllegalChars())

	return NewPipelineWithSteps(steps, logger)
}

func NewPipelineWithSteps(steps []Step, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{steps: steps, logger: logger}
}

// StepNames lists the configured steps in order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name
	}
	return names
}

// Sanitize runs every step over the first <article> in markup and returns
// its outer HTML. Running it on its own output changes nothing.
func (p *Pipeline) Sanitize(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse article markup: %w", err)
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		return "", domain.ErrArticleNotFound
	}

	for _, step := range p.steps {
		p.apply(step, article)
	}

	out, err := goquery.OuterHtml(article)
	if err != nil {
		return "", fmt.Errorf("render article: %w", err)
	}
	return out, nil
}

func (p *Pipeline) apply(step Step, article *goquery.Selection) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("sanitization step panicked, skipping",
				"step", step.Name,
				"panic", fmt.Sprint(r))
		}
	}()
	step.Apply(article)
}
