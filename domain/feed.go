package domain

import "time"

// FeedItem is one entry of the source feed. Only Link drives processing; the
// other fields are read for logging and pass through untouched.
type FeedItem struct {
	Link    string
	Title   string
	GUID    string
	PubDate string
}

// MissingArticlePolicy decides what happens when a page has no <article>.
type MissingArticlePolicy string

const (
	// MissingArticleAbort fails the whole run.
	MissingArticleAbort MissingArticlePolicy = "abort"
	// MissingArticleSkip keeps the item's original description.
	MissingArticleSkip MissingArticlePolicy = "skip"
	// MissingArticleReadability extracts the body with readability instead.
	MissingArticleReadability MissingArticlePolicy = "readability"
)

// Valid reports whether p is a known policy.
func (p MissingArticlePolicy) Valid() bool {
	switch p {
	case MissingArticleAbort, MissingArticleSkip, MissingArticleReadability:
		return true
	}
	return false
}

// RunResult summarises one augmentation run.
type RunResult struct {
	RunID         string        `json:"run_id"`
	StartedAt     time.Time     `json:"started_at"`
	Duration      time.Duration `json:"duration"`
	Items         int           `json:"items"`
	Augmented     int           `json:"augmented"`
	Skipped       int           `json:"skipped"`
	ArticleHits   int           `json:"article_cache_hits"`
	ArticleMisses int           `json:"article_cache_misses"`
	Evicted       int           `json:"evicted"`
	OutputPath    string        `json:"output_path"`
	OutputBytes   int           `json:"output_bytes"`
}
