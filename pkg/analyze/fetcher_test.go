package analyze_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/pkg/analyze"
)

func TestFetchViaReader(t *testing.T) {
	article := "# Big Story\n\n" + strings.Repeat("A meaningful paragraph of reporting. ", 20)

	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "text/plain", r.Header.Get("Accept"))
		fmt.Fprint(w, article)
	}))
	defer reader.Close()

	f := analyze.NewFetcher(reader.URL+"/", "sourceinfo-test/0.1", time.Minute)

	art, err := f.Fetch(context.Background(), "https://example.com/story")
	require.NoError(t, err)
	require.Equal(t, "reader", art.Method)
	require.Equal(t, "Big Story", art.Title)
	require.Greater(t, art.WordCount, 50)
}

func TestFetchCaches(t *testing.T) {
	hits := 0
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, strings.Repeat("cached article text. ", 30))
	}))
	defer reader.Close()

	f := analyze.NewFetcher(reader.URL+"/", "sourceinfo-test/0.1", time.Minute)
	ctx := context.Background()

	first, err := f.Fetch(ctx, "https://example.com/story")
	require.NoError(t, err)
	second, err := f.Fetch(ctx, "https://example.com/story")
	require.NoError(t, err)

	require.Equal(t, 1, hits)
	require.Equal(t, first, second)
}

func TestFetchDirectFallback(t *testing.T) {
	para := strings.Repeat("This paragraph carries enough real sentence text to count. ", 3)
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprint(w, "User-agent: *\nAllow: /\n")
		default:
			fmt.Fprintf(w, `<html><head><title>Site Title</title></head><body>
				<article><p>%s</p><p>%s</p><p>%s</p><p>short</p></article>
				</body></html>`, para, para, para)
		}
	}))
	defer site.Close()

	// Reader endpoint always fails, forcing the direct path.
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer reader.Close()

	f := analyze.NewFetcher(reader.URL+"/", "sourceinfo-test/0.1", time.Minute)

	art, err := f.Fetch(context.Background(), site.URL+"/story")
	require.NoError(t, err)
	require.Equal(t, "direct", art.Method)
	require.Equal(t, "Site Title", art.Title)
	require.NotContains(t, art.Content, "short")
}

func TestFetchDirectRespectsRobots(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
		default:
			fmt.Fprint(w, "<html><body><p>"+strings.Repeat("hidden text ", 40)+"</p></body></html>")
		}
	}))
	defer site.Close()

	f := analyze.NewFetcher("", "sourceinfo-test/0.1", time.Minute)

	_, err := f.Fetch(context.Background(), site.URL+"/private/story")
	require.Error(t, err)
	require.Contains(t, err.Error(), "robots")
}

func TestFetchTooShort(t *testing.T) {
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "stub")
	}))
	defer reader.Close()

	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><p>tiny</p></body></html>")
	}))
	defer site.Close()

	f := analyze.NewFetcher(reader.URL+"/", "sourceinfo-test/0.1", time.Minute)

	_, err := f.Fetch(context.Background(), site.URL+"/story")
	require.Error(t, err)
	require.Contains(t, err.Error(), "too short")
}
