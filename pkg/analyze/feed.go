package analyze

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// FeedArticle is one entry sampled from a publisher's RSS/Atom feed.
type FeedArticle struct {
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Published time.Time `json:"published"`
}

// SampleFeed fetches a publisher feed and returns up to limit recent
// articles, for spot-checking a source's output against its catalogue
// rating.
func SampleFeed(ctx context.Context, client *http.Client, feedURL string, limit int) ([]FeedArticle, error) {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if limit <= 0 {
		limit = 5
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create feed request: %w", err)
	}
	req.Header.Set("User-Agent", "sourceinfo/0.1")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed %s status %d", feedURL, resp.StatusCode)
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	var articles []FeedArticle
	for _, entry := range parsed.Items {
		if entry.Link == "" {
			continue
		}
		published := time.Time{}
		if entry.PublishedParsed != nil {
			published = entry.PublishedParsed.UTC()
		}
		articles = append(articles, FeedArticle{
			Title:     entry.Title,
			URL:       entry.Link,
			Published: published,
		})
		if len(articles) >= limit {
			break
		}
	}
	return articles, nil
}
