package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Document is a static, already-rendered page backed by goquery. CSS
// selectors go through goquery; "xpath:" selectors go through htmlquery.
type Document struct {
	url string
	doc *goquery.Document
}

// NewDocument parses HTML from r.
func NewDocument(pageURL string, r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &types.ExtractionError{URL: pageURL, Err: fmt.Errorf("parse HTML: %w", err)}
	}
	return &Document{url: pageURL, doc: doc}, nil
}

// NewDocumentFromString parses an HTML string.
func NewDocumentFromString(pageURL, body string) (*Document, error) {
	return NewDocument(pageURL, strings.NewReader(body))
}

// URL implements types.Page.
func (d *Document) URL() string { return d.url }

// Find implements types.Page.
func (d *Document) Find(selector string) ([]types.Element, error) {
	return find(d.doc.Selection, selector)
}

// Close implements types.Page. A static document holds no resources.
func (d *Document) Close() error { return nil }

// element wraps a single-node goquery selection.
type element struct {
	sel *goquery.Selection
}

func (e *element) Text() (string, error) {
	return e.sel.Text(), nil
}

func (e *element) Attr(name string) (string, bool, error) {
	val, ok := e.sel.Attr(name)
	return val, ok, nil
}

func (e *element) Find(selector string) ([]types.Element, error) {
	return find(e.sel, selector)
}

// find applies a CSS or XPath selector below root.
func find(root *goquery.Selection, selector string) ([]types.Element, error) {
	expr, isXPath := types.SplitSelector(selector)
	if !isXPath {
		var out []types.Element
		root.Find(expr).Each(func(_ int, s *goquery.Selection) {
			out = append(out, &element{sel: s})
		})
		return out, nil
	}

	var out []types.Element
	for _, node := range root.Nodes {
		matches, err := htmlquery.QueryAll(node, expr)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
		}
		for _, m := range matches {
			if m.Type != html.ElementNode {
				continue
			}
			out = append(out, &element{sel: goquery.NewDocumentFromNode(m).Selection})
		}
	}
	return out, nil
}
