// Package feeds adapts RSS and Atom feeds into the same headline stream
// the news API provides, so configured feeds flow through the identical
// ingestion pipeline.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdesk/pkg/domain"
	"newsdesk/pkg/httpclient"
	"newsdesk/pkg/textutil"
)

// Feed descriptions are often whole article bodies; cap them at a
// headline-like length before they enter the pipeline.
const maxDescriptionWords = 60

// Source fetches headlines from a fixed set of feed URLs.
type Source struct {
	client *httpclient.Client
	urls   []string
}

// New builds a Source over the given feed URLs.
func New(client *httpclient.Client, urls []string) *Source {
	return &Source{client: client, urls: urls}
}

// Headlines downloads and parses every configured feed. A failing feed is
// reported but does not abort the rest; the error return is non-nil only
// when all feeds fail.
func (s *Source) Headlines(ctx context.Context) ([]domain.Headline, error) {
	var out []domain.Headline
	var lastErr error
	failed := 0

	for _, feedURL := range s.urls {
		items, err := s.fetch(ctx, feedURL)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		out = append(out, items...)
	}

	if failed == len(s.urls) && len(s.urls) > 0 {
		return nil, fmt.Errorf("all %d feeds failed, last error: %w", failed, lastErr)
	}
	return out, nil
}

func (s *Source) fetch(ctx context.Context, feedURL string) ([]domain.Headline, error) {
	resp, err := s.client.Get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("get feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get feed %s: status %d", feedURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", feedURL, err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	out := make([]domain.Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" {
			continue
		}
		h := domain.Headline{
			URL:         item.Link,
			Title:       item.Title,
			Description: textutil.TruncateWords(item.Description, maxDescriptionWords),
			SourceName:  feed.Title,
		}
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			h.Author = item.Authors[0].Name
		}
		if item.Image != nil {
			h.ImageURL = item.Image.URL
		}
		if item.PublishedParsed != nil {
			h.PublishedAt = item.PublishedParsed.UTC().Format(time.RFC3339)
		}
		out = append(out, h)
	}
	return out, nil
}
