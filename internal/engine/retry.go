package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/IshaanNene/BreedStalk/internal/observability"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Retrier reopens pages whose fetch failed with a retryable error, with
// exponential backoff. Non-retryable errors are returned at once.
type Retrier struct {
	maxRetries int
	delay      time.Duration
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewRetrier creates a Retrier allowing maxRetries extra attempts,
// starting at delay between attempts.
func NewRetrier(maxRetries int, delay time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Retrier {
	return &Retrier{
		maxRetries: maxRetries,
		delay:      delay,
		metrics:    metrics,
		logger:     logger.With("component", "retrier"),
	}
}

// Open calls f.Open until it succeeds, fails permanently, runs out of
// attempts or ctx is done.
func (r *Retrier) Open(ctx context.Context, f Fetcher, url string) (types.Page, error) {
	if r.maxRetries <= 0 {
		return f.Open(ctx, url)
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.delay
	exp.MaxInterval = 30 * r.delay
	exp.MaxElapsedTime = 0
	hinted := &retryAfterBackOff{BackOff: exp}
	policy := backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(r.maxRetries)), ctx)

	var page types.Page
	op := func() error {
		p, err := f.Open(ctx, url)
		if err == nil {
			page = p
			return nil
		}
		if !types.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		var fe *types.FetchError
		if errors.As(err, &fe) {
			hinted.hint = fe.RetryAfter
		}
		return err
	}
	notify := func(err error, next time.Duration) {
		r.metrics.FetchRetries.Add(1)
		r.logger.Warn("retrying fetch", "url", url, "backoff", next, "error", err)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return page, nil
}

// retryAfterBackOff waits at least as long as the server asked in its
// last Retry-After header.
type retryAfterBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.BackOff.NextBackOff()
	if next == backoff.Stop {
		return next
	}
	if b.hint > next {
		next = b.hint
	}
	b.hint = 0
	return next
}
