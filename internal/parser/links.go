package parser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// ResolveLink turns an href found on a page into an absolute URL on base.
func ResolveLink(base *url.URL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", fmt.Errorf("%w: empty href", types.ErrInvalidURL)
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", types.ErrInvalidURL, href, err)
	}
	resolved := base.ResolveReference(parsed)
	resolved.Fragment = ""
	return resolved.String(), nil
}

// PageURL returns root with its "page" query parameter set to index.
func PageURL(root *url.URL, index int) string {
	u := *root
	q := u.Query()
	q.Set("page", strconv.Itoa(index))
	u.RawQuery = q.Encode()
	return u.String()
}

// PageIndex reads the "page" query parameter of an href such as "?page=12".
func PageIndex(href string) (int, error) {
	parsed, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return 0, fmt.Errorf("parse href: %w", err)
	}
	raw := parsed.Query().Get("page")
	if raw == "" {
		return 0, fmt.Errorf("href has no page parameter")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("page parameter %q: %w", raw, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("page parameter %d is negative", n)
	}
	return n, nil
}
