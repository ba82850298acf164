package analyze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/patrickmn/go-cache"
	"github.com/temoto/robotstxt"
)

// ArticleContent is extracted article text ready for analysis.
type ArticleContent struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content"`
	Method    string `json:"method"` // "reader" or "direct"
	WordCount int    `json:"word_count"`
}

// Fetcher retrieves article text, preferring a reader proxy that returns
// clean markdown and falling back to direct HTML extraction. Results are
// cached so repeated analyses of the same URL don't refetch.
type Fetcher struct {
	client    *http.Client
	readerURL string
	userAgent string
	content   *cache.Cache

	mu     sync.RWMutex
	robots map[string]*robotstxt.RobotsData
}

// NewFetcher creates a fetcher. readerURL is the prefix of a reader proxy
// such as https://r.jina.ai/; empty disables the proxy path.
func NewFetcher(readerURL, userAgent string, cacheTTL time.Duration) *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: 30 * time.Second},
		readerURL: readerURL,
		userAgent: userAgent,
		content:   cache.New(cacheTTL, 2*cacheTTL),
		robots:    make(map[string]*robotstxt.RobotsData),
	}
}

// Fetch retrieves the article at rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*ArticleContent, error) {
	if cached, ok := f.content.Get(rawURL); ok {
		return cached.(*ArticleContent), nil
	}

	var art *ArticleContent
	var readerErr error
	if f.readerURL != "" {
		art, readerErr = f.fetchReader(ctx, rawURL)
	} else {
		readerErr = fmt.Errorf("reader proxy disabled")
	}
	if art == nil {
		var directErr error
		art, directErr = f.fetchDirect(ctx, rawURL)
		if art == nil {
			return nil, fmt.Errorf("fetch %s: reader: %v; direct: %w", rawURL, readerErr, directErr)
		}
	}

	f.content.Set(rawURL, art, cache.DefaultExpiration)
	return art, nil
}

// fetchReader pulls the article through the reader proxy, which returns
// plain-text markdown with the title as a leading heading.
func (f *Fetcher) fetchReader(ctx context.Context, rawURL string) (*ArticleContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.readerURL+rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create reader request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reader request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reader status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("read reader response: %w", err)
	}

	text := strings.TrimSpace(string(body))
	if len(text) < 200 {
		// Paywalled or blocked pages come back as a stub.
		return nil, fmt.Errorf("content too short (%d chars)", len(text))
	}

	var title string
	if line, _, _ := strings.Cut(text, "\n"); strings.HasPrefix(line, "#") {
		title = strings.TrimSpace(strings.TrimLeft(line, "# "))
	}

	return &ArticleContent{
		URL:       rawURL,
		Title:     title,
		Content:   text,
		Method:    "reader",
		WordCount: len(strings.Fields(text)),
	}, nil
}

// fetchDirect downloads the page itself and extracts paragraph text. It
// honors the site's robots.txt for our user agent.
func (f *Fetcher) fetchDirect(ctx context.Context, rawURL string) (*ArticleContent, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	allowed, err := f.robotsAllowed(ctx, parsed)
	if err == nil && !allowed {
		return nil, fmt.Errorf("disallowed by robots.txt")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("direct request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("direct status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var paras []string
	doc.Find("article p, p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 40 {
			paras = append(paras, text)
		}
	})
	text := strings.Join(paras, "\n\n")
	if len(text) < 200 {
		return nil, fmt.Errorf("extracted content too short (%d chars)", len(text))
	}

	return &ArticleContent{
		URL:       rawURL,
		Title:     title,
		Content:   text,
		Method:    "direct",
		WordCount: len(strings.Fields(text)),
	}, nil
}

func (f *Fetcher) robotsAllowed(ctx context.Context, u *url.URL) (bool, error) {
	f.mu.RLock()
	data, ok := f.robots[u.Host]
	f.mu.RUnlock()

	if !ok {
		robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
		if err != nil {
			return true, err
		}
		req.Header.Set("User-Agent", f.userAgent)

		resp, err := f.client.Do(req)
		if err != nil {
			// Unreachable robots.txt does not block fetching.
			return true, err
		}
		defer resp.Body.Close()

		data, err = robotstxt.FromResponse(resp)
		if err != nil {
			return true, err
		}

		f.mu.Lock()
		f.robots[u.Host] = data
		f.mu.Unlock()
	}

	return data.TestAgent(u.Path, f.userAgent), nil
}
