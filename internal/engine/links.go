package engine

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/BreedStalk/internal/parser"
)

// CollectLinks reads every listing page in [0, last] concurrently and
// returns the detail links in page-index order. Any listing page failure
// fails the whole collection.
func (c *Crawler) CollectLinks(ctx context.Context, root *url.URL, last int) ([]string, error) {
	pages := make([][]string, last+1)

	g, gctx := errgroup.WithContext(ctx)
	if n := c.cfg.Engine.ListingConcurrency; n > 0 {
		g.SetLimit(n)
	}

	for i := 0; i <= last; i++ {
		g.Go(func() error {
			links, err := c.listingLinks(gctx, parser.PageURL(root, i))
			if err != nil {
				return fmt.Errorf("listing page %d: %w", i, err)
			}
			pages[i] = links
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, p := range pages {
		total += len(p)
	}
	links := make([]string, 0, total)
	for _, p := range pages {
		links = append(links, p...)
	}
	return links, nil
}

// listingLinks returns the resolved href of every listing entry on one
// page. Entries without an href are skipped.
func (c *Crawler) listingLinks(ctx context.Context, pageURL string) ([]string, error) {
	page, err := c.open(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer c.closePage(page)
	c.metrics.ListingPages.Add(1)

	nodes, err := page.Find(c.cfg.Site.Selectors.ListingLink)
	if err != nil {
		return nil, fmt.Errorf("find links on %s: %w", pageURL, err)
	}

	links := make([]string, 0, len(nodes))
	for _, node := range nodes {
		href, ok, err := node.Attr("href")
		if err != nil {
			return nil, fmt.Errorf("read href on %s: %w", pageURL, err)
		}
		if !ok {
			continue
		}
		link, err := parser.ResolveLink(c.base, href)
		if err != nil {
			c.logger.Debug("skipping listing entry", "page", pageURL, "href", href, "error", err)
			continue
		}
		links = append(links, link)
	}

	c.metrics.LinksCollected.Add(int64(len(links)))
	c.logger.Debug("listing page read", "url", pageURL, "links", len(links))
	return links, nil
}
