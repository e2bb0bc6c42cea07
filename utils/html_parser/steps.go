package html_parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const categoryImagePrefix = "/assets/categories/"

var commentCountPattern = regexp.MustCompile(`\bComments?\b`)

// RemoveSelector deletes every element matching selector.
func RemoveSelector(name, selector string) Step {
	return Step{
		Name: name,
		Apply: func(article *goquery.Selection) {
			article.Find(selector).Remove()
		},
	}
}

// InlineCategoryImage swaps category icons in the first div.content for their
// alt text.
func InlineCategoryImage() Step {
	return Step{
		Name: "inline-category-image",
		Apply: func(article *goquery.Selection) {
			content := article.Find("div.content").First()
			content.Find("img[src]").Each(func(_ int, img *goquery.Selection) {
				src, _ := img.Attr("src")
				if !isCategoryImage(src) {
					return
				}
				alt, _ := img.Attr("alt")
				img.ReplaceWithNodes(&html.Node{Type: html.TextNode, Data: alt})
			})
		},
	}
}

func isCategoryImage(src string) bool {
	if strings.HasPrefix(src, categoryImagePrefix) {
		return true
	}
	u, err := url.Parse(src)
	if err != nil {
		return false
	}
	return strings.HasPrefix(u.Path, categoryImagePrefix)
}

// AbsolutizeRootRelative prefixes href/src values that start with a single
// slash with origin.
func AbsolutizeRootRelative(origin string) Step {
	origin = strings.TrimRight(origin, "/")
	return Step{
		Name: "absolutize-root-relative",
		Apply: func(article *goquery.Selection) {
			if origin == "" {
				return
			}
			rewriteAttr(article, "a[href]", "href", func(v string) string {
				if isRootRelative(v) {
					return origin + v
				}
				return v
			})
			rewriteAttr(article, "img[src]", "src", func(v string) string {
				if isRootRelative(v) {
					return origin + v
				}
				return v
			})
		},
	}
}

func isRootRelative(v string) bool {
	return strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//")
}

// AbsolutizeProtocolRelative turns //host/path into https://host/path.
func AbsolutizeProtocolRelative() Step {
	fix := func(v string) string {
		if strings.HasPrefix(v, "//") {
			return "https:" + v
		}
		return v
	}
	return Step{
		Name: "absolutize-protocol-relative",
		Apply: func(article *goquery.Selection) {
			rewriteAttr(article, "a[href]", "href", fix)
			rewriteAttr(article, "img[src]", "src", fix)
		},
	}
}

// NeutralizeCommentCount replaces forum links reading "N Comments" with a
// fixed label so the body does not change every time someone comments.
func NeutralizeCommentCount() Step {
	return Step{
		Name: "neutralize-comment-count",
		Apply: func(article *goquery.Selection) {
			article.Find(`a[href*="/forums/node/"]`).Each(func(_ int, a *goquery.Selection) {
				if commentCountPattern.MatchString(a.Text()) {
					a.SetText("Comments")
				}
			})
		},
	}
}

// StripXMLIllegalChars removes runes that XML 1.0 does not allow, such as
// U+000B, from text, comments and attribute values. HTML tolerates them but
// a feed reader rejects the whole document.
func StripXMLIllegalChars() Step {
	return Step{
		Name: "strip-xml-illegal-chars",
		Apply: func(article *goquery.Selection) {
			for _, n := range article.Nodes {
				stripIllegal(n)
			}
		},
	}
}

func stripIllegal(n *html.Node) {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		n.Data = strings.Map(xmlChar, n.Data)
	case html.ElementNode:
		for i := range n.Attr {
			n.Attr[i].Val = strings.Map(xmlChar, n.Attr[i].Val)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		stripIllegal(c)
	}
}

func xmlChar(r rune) rune {
	switch {
	case r == '\t', r == '\n', r == '\r',
		r >= 0x20 && r <= 0xD7FF,
		r >= 0xE000 && r <= 0xFFFD,
		r >= 0x10000 && r <= 0x10FFFF:
		return r
	}
	return -1
}

func rewriteAttr(article *goquery.Selection, selector, attr string, fn func(string) string) {
	article.Find(selector).Each(func(_ int, s *goquery.Selection) {
		v, _ := s.Attr(attr)
		if nv := fn(v); nv != v {
			s.SetAttr(attr, nv)
		}
	})
}
