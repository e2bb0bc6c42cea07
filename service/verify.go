package service

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
)

// VerifyOutput parses out with gofeed and checks that it carries the same
// items as the source, in the same order.
func VerifyOutput(out []byte, want []domain.FeedItem) error {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(out))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOutputVerification, err)
	}
	if feed.FeedType != "rss" {
		return fmt.Errorf("%w: feed type %q", domain.ErrOutputVerification, feed.FeedType)
	}
	if len(feed.Items) != len(want) {
		return fmt.Errorf("%w: %d items, source has %d", domain.ErrOutputVerification, len(feed.Items), len(want))
	}
	for i, item := range feed.Items {
		if want[i].Link == "" {
			continue
		}
		if got := strings.TrimSpace(item.Link); got != want[i].Link {
			return fmt.Errorf("%w: item %d link %q, source has %q", domain.ErrOutputVerification, i+1, got, want[i].Link)
		}
	}
	return nil
}
