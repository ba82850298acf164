package source_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sourceinfo/sourceinfo/pkg/source"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare domain", "nytimes.com", "nytimes.com"},
		{"full url", "https://www.nytimes.com/2024/01/01/politics/article.html", "nytimes.com"},
		{"http scheme", "http://example.com/path", "example.com"},
		{"uppercase host", "https://WWW.Example.com/x", "example.com"},
		{"www without scheme", "www.foxnews.com", "foxnews.com"},
		{"stacked www", "www.www.example.com", "example.com"},
		{"port stripped", "example.com:8080/page", "example.com"},
		{"query and fragment", "https://cnn.com/story?utm=x#top", "cnn.com"},
		{"subdomain kept", "edition.cnn.com", "edition.cnn.com"},
		{"surrounding whitespace", "  reuters.com  ", "reuters.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := source.Normalize(tt.input)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := source.Normalize("https://www.theguardian.com/us-news")
	require.NoError(t, err)

	second, err := source.Normalize(first)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestNormalizeInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "not a url at all", "https://", "localhost"} {
		_, err := source.Normalize(input)
		require.ErrorIs(t, err, source.ErrInvalidInput, "input %q", input)
	}
}
