package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/observability"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Fetcher opens isolated pages. fetcher.Fetcher satisfies it.
type Fetcher interface {
	Open(ctx context.Context, url string) (types.Page, error)
}

// Pipeline is the interface for the record processing pipeline.
type Pipeline interface {
	Process(rec *types.Record) (*types.Record, error)
}

// RunResult summarizes one category run.
type RunResult struct {
	Category   string
	LastPage   int
	Links      int
	Duplicates int
	Records    []*types.Record
	Failures   []EntityFailure
	Duration   time.Duration
}

// Crawler runs the pagination, link collection and extraction phases for
// one category at a time.
type Crawler struct {
	cfg      *config.Config
	base     *url.URL
	fetcher  Fetcher
	pipeline Pipeline
	retrier  *Retrier
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates a Crawler. pipeline and metrics may be nil.
func New(cfg *config.Config, f Fetcher, pipeline Pipeline, metrics *observability.Metrics, logger *slog.Logger) (*Crawler, error) {
	base, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: site base %q: %v", types.ErrInvalidURL, cfg.Site.BaseURL, err)
	}
	if metrics == nil {
		metrics = observability.NewMetrics(logger)
	}

	return &Crawler{
		cfg:      cfg,
		base:     base,
		fetcher:  f,
		pipeline: pipeline,
		retrier:  NewRetrier(cfg.Engine.MaxRetries, cfg.Engine.RetryDelay, metrics, logger),
		metrics:  metrics,
		logger:   logger.With("component", "crawler"),
	}, nil
}

// Metrics returns the crawler's metrics.
func (c *Crawler) Metrics() *observability.Metrics {
	return c.metrics
}

// CategoryURL returns the absolute root URL of a category.
func (c *Crawler) CategoryURL(cat config.Category) (*url.URL, error) {
	ref, err := url.Parse(cat.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: category %s path %q: %v", types.ErrInvalidURL, cat.Name, cat.Path, err)
	}
	return c.base.ResolveReference(ref), nil
}

// Run crawls one category. Pagination and listing failures are fatal and
// return a nil result. Under the fail_fast policy an entity failure
// returns the error together with every record collected so far.
func (c *Crawler) Run(ctx context.Context, cat config.Category) (*RunResult, error) {
	start := time.Now()
	logger := c.logger.With("category", cat.Name)

	root, err := c.CategoryURL(cat)
	if err != nil {
		return nil, err
	}

	last, err := c.LastPageIndex(ctx, root.String())
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", cat.Name, err)
	}
	logger.Info("pagination resolved", "root", root.String(), "last_page", last)

	links, err := c.CollectLinks(ctx, root, last)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", cat.Name, err)
	}

	res := &RunResult{Category: cat.Name, LastPage: last, Links: len(links)}
	if c.cfg.Engine.DedupLinks {
		links, res.Duplicates = NewDeduplicator(len(links)).Filter(links)
		c.metrics.LinksDeduped.Add(int64(res.Duplicates))
	}
	logger.Info("links collected", "links", res.Links, "duplicates", res.Duplicates)

	results := NewResults(len(links))
	failures, err := c.ExtractAll(ctx, cat, links, results)
	res.Records = results.Records()
	res.Failures = failures
	res.Duration = time.Since(start)

	logger.Info("category complete",
		"records", len(res.Records),
		"failures", len(res.Failures),
		"duration", res.Duration,
	)
	if err != nil {
		return res, fmt.Errorf("category %s: %w", cat.Name, err)
	}
	return res, nil
}

// open fetches a page through the retrier and counts the outcome.
func (c *Crawler) open(ctx context.Context, pageURL string) (types.Page, error) {
	page, err := c.retrier.Open(ctx, c.fetcher, pageURL)
	if err != nil {
		c.metrics.FetchErrors.Add(1)
		return nil, err
	}
	c.metrics.PagesFetched.Add(1)
	return page, nil
}

func (c *Crawler) closePage(page types.Page) {
	if err := page.Close(); err != nil {
		c.logger.Warn("page close failed", "url", page.URL(), "error", err)
	}
}
