package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// EntityFailure records one detail page that produced no record.
type EntityFailure struct {
	URL string
	Err error
}

// ExtractAll runs the extraction task for every link with at most
// engine.pool_size tasks in flight, appending records to results as tasks
// complete.
//
// Under the isolate policy a failed task is logged and recorded while the
// others carry on. Under fail_fast the first failure stops dispatch and is
// returned once in-flight tasks finish. Records appended before the error
// stay in results.
func (c *Crawler) ExtractAll(ctx context.Context, cat config.Category, links []string, results *Results) ([]EntityFailure, error) {
	logger := c.logger.With("category", cat.Name)
	failFast := c.cfg.Engine.FailurePolicy == config.FailureFailFast

	var (
		mu       sync.Mutex
		failures []EntityFailure
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Engine.PoolSize)

	logger.Info("extraction starting", "links", len(links), "pool_size", c.cfg.Engine.PoolSize, "failure_policy", c.cfg.Engine.FailurePolicy)

	for _, link := range links {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			c.metrics.TaskStarted()
			defer c.metrics.TaskFinished()

			rec, err := c.process(ctx, cat, link)
			if err != nil {
				c.metrics.ExtractionFailures.Add(1)
				mu.Lock()
				failures = append(failures, EntityFailure{URL: link, Err: err})
				mu.Unlock()
				logger.Warn("entity failed", "url", link, "error", err)
				if failFast {
					return err
				}
				return nil
			}
			if rec == nil {
				c.metrics.RecordsDropped.Add(1)
				return nil
			}

			results.Append(rec)
			c.metrics.RecordsExtracted.Add(1)
			logger.Info("entity extracted", "name", rec.Name(), "url", link)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return failures, err
	}
	if err := ctx.Err(); err != nil {
		return failures, err
	}
	return failures, nil
}

// process extracts one entity and runs it through the record pipeline.
// A nil record with a nil error means the pipeline dropped it.
func (c *Crawler) process(ctx context.Context, cat config.Category, link string) (*types.Record, error) {
	rec, err := c.extractEntity(ctx, cat, link)
	if err != nil {
		return nil, err
	}
	if c.pipeline == nil {
		return rec, nil
	}
	return c.pipeline.Process(rec)
}
