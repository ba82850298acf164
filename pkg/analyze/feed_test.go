package analyze_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/pkg/analyze"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example News</title>
    <item>
      <title>First Story</title>
      <link>https://example.com/first</link>
      <pubDate>Mon, 24 Aug 2026 10:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Second Story</title>
      <link>https://example.com/second</link>
      <pubDate>Sun, 23 Aug 2026 09:00:00 GMT</pubDate>
    </item>
    <item>
      <title>No Link Story</title>
    </item>
    <item>
      <title>Third Story</title>
      <link>https://example.com/third</link>
    </item>
  </channel>
</rss>`

func TestSampleFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	articles, err := analyze.SampleFeed(context.Background(), nil, ts.URL, 10)
	require.NoError(t, err)

	// Entries without a link are skipped.
	require.Len(t, articles, 3)
	require.Equal(t, "First Story", articles[0].Title)
	require.Equal(t, "https://example.com/first", articles[0].URL)
	require.False(t, articles[0].Published.IsZero())
	require.True(t, articles[2].Published.IsZero())
}

func TestSampleFeedLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleRSS)
	}))
	defer ts.Close()

	articles, err := analyze.SampleFeed(context.Background(), nil, ts.URL, 1)
	require.NoError(t, err)
	require.Len(t, articles, 1)
}

func TestSampleFeedBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := analyze.SampleFeed(context.Background(), nil, ts.URL, 5)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 404")
}
