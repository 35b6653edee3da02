package types

import "strings"

// XPathPrefix marks a selector as an XPath expression instead of CSS.
const XPathPrefix = "xpath:"

// Element is a single node of a fetched page.
type Element interface {
	// Text returns the node's text content.
	Text() (string, error)

	// Attr returns the named attribute and whether it is present.
	Attr(name string) (string, bool, error)

	// Find returns descendant nodes matching selector, in document order.
	Find(selector string) ([]Element, error)
}

// Page is a rendered, queryable document owned by one task.
type Page interface {
	// URL returns the address the page was loaded from.
	URL() string

	// Find returns nodes matching selector, in document order.
	Find(selector string) ([]Element, error)

	// Close releases the page and any browsing context behind it.
	Close() error
}

// SplitSelector reports whether selector is an XPath expression and
// returns the expression without its prefix.
func SplitSelector(selector string) (expr string, isXPath bool) {
	if rest, ok := strings.CutPrefix(selector, XPathPrefix); ok {
		return strings.TrimSpace(rest), true
	}
	return selector, false
}
