package html_parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

// DecodeHTML converts a cached page to UTF-8. The encoding is sniffed from a
// BOM, a <meta charset> or the content itself; contentType may be empty.
func DecodeHTML(content []byte, contentType string) (string, error) {
	enc, name, _ := charset.DetermineEncoding(content, contentType)
	// Sniffing only looks at the first 1 KiB and falls back to windows-1252.
	if name == "utf-8" || (name == "windows-1252" && utf8.Valid(content)) {
		return string(content), nil
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("decode %s page: %w", name, err)
	}
	return string(decoded), nil
}

// ExtractArticle returns the outer HTML of the first <article> element.
func ExtractArticle(page []byte) (string, error) {
	decoded, err := DecodeHTML(page, "")
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		return "", domain.ErrArticleNotFound
	}

	outer, err := goquery.OuterHtml(article)
	if err != nil {
		return "", fmt.Errorf("render article: %w", err)
	}
	return outer, nil
}

// ExtractWithReadability finds the main content with go-readability and wraps
// it in an <article> element so it can go through the same pipeline.
func ExtractWithReadability(page []byte, pageURL string) (string, error) {
	decoded, err := DecodeHTML(page, "")
	if err != nil {
		return "", err
	}

	var u *url.URL
	if pageURL != "" {
		if u, err = url.Parse(pageURL); err != nil {
			return "", fmt.Errorf("invalid page URL %q: %w", pageURL, err)
		}
	}

	article, err := readability.FromReader(strings.NewReader(decoded), u)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	var buf bytes.Buffer
	if err := article.RenderHTML(&buf); err != nil {
		return "", fmt.Errorf("readability render: %w", err)
	}

	body := strings.TrimSpace(buf.String())
	if body == "" || StripTags(body) == "" {
		return "", domain.ErrArticleContentEmpty
	}
	return "<article>" + body + "</article>", nil
}

// StripTags removes HTML tags from a string and returns plain text.
// It uses bluemonday's strict policy which strips all tags.
func StripTags(raw string) string {
	p := bluemonday.StrictPolicy()
	return normalizeWhitespace(p.Sanitize(raw))
}

// normalizeWhitespace normalizes whitespace by replacing multiple spaces with single space.
func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
