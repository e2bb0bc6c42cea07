package html_parser

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// NewFeedPolicy is the UGC policy widened with the structural elements found
// in article bodies. Links are left without rel="nofollow".
func NewFeedPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("article", "section", "div", "span", "figure", "figcaption")
	p.AllowAttrs("class", "id").Globally()
	p.RequireNoFollowOnLinks(false)
	return p
}

// StripUnsafeMarkup drops event handlers, inline styles and elements that
// feed readers reject.
func StripUnsafeMarkup(policy *bluemonday.Policy) Step {
	return Step{
		Name: "strip-unsafe-markup",
		Apply: func(article *goquery.Selection) {
			inner, err := article.Html()
			if err != nil {
				return
			}
			article.SetHtml(policy.Sanitize(inner))

			for _, node := range article.Nodes {
				kept := node.Attr[:0]
				for _, a := range node.Attr {
					if a.Key == "class" || a.Key == "id" {
						kept = append(kept, a)
					}
				}
				node.Attr = kept
			}
		},
	}
}
