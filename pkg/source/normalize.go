package source

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidInput reports a URL or domain string that cannot be normalized.
var ErrInvalidInput = errors.New("invalid url or domain")

// Normalize canonicalizes a URL or bare hostname into the catalogue lookup
// key: the lower-case hostname with any leading "www." stripped. Idempotent,
// so an already-normalized domain passes through unchanged.
func Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidInput)
	}

	// Bare hostnames parse as a path, so force a scheme first.
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	host := strings.ToLower(u.Hostname())
	for strings.HasPrefix(host, "www.") {
		host = strings.TrimPrefix(host, "www.")
	}

	if host == "" || !strings.Contains(host, ".") {
		return "", fmt.Errorf("%w: no hostname in %q", ErrInvalidInput, input)
	}
	return host, nil
}
