package engine

import (
	"context"
	"fmt"

	"github.com/IshaanNene/BreedStalk/internal/parser"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// LastPageIndex opens the category root and reads the index of the last
// listing page from the pagination control. An index at or beyond
// engine.max_pages is rejected.
func (c *Crawler) LastPageIndex(ctx context.Context, rootURL string) (int, error) {
	page, err := c.open(ctx, rootURL)
	if err != nil {
		return 0, err
	}
	defer c.closePage(page)

	selector := c.cfg.Site.Selectors.LastPage
	nodes, err := page.Find(selector)
	if err != nil {
		return 0, &types.PaginationError{URL: rootURL, Err: err}
	}
	if len(nodes) == 0 {
		return 0, &types.PaginationError{URL: rootURL, Err: types.ErrPaginationNotFound}
	}

	href, ok, err := nodes[0].Attr("href")
	if err != nil {
		return 0, &types.PaginationError{URL: rootURL, Err: err}
	}
	if !ok {
		return 0, &types.PaginationError{URL: rootURL, Err: types.ErrPaginationNotFound}
	}

	last, err := parser.PageIndex(href)
	if err != nil {
		return 0, &types.PaginationError{
			URL:  rootURL,
			Href: href,
			Err:  fmt.Errorf("%w: %v", types.ErrPaginationNotFound, err),
		}
	}
	if limit := c.cfg.Engine.MaxPages; limit > 0 && last >= limit {
		return 0, &types.PaginationError{
			URL:  rootURL,
			Href: href,
			Err:  fmt.Errorf("%w: last page %d exceeds max_pages %d", types.ErrPaginationNotFound, last, limit),
		}
	}
	return last, nil
}
