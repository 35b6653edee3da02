package fetcher

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Throttled spaces out Open calls on the wrapped fetcher so that at most
// one navigation starts per delay, across all goroutines.
type Throttled struct {
	next    Fetcher
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewThrottled wraps next with a limiter allowing one Open per delay.
func NewThrottled(next Fetcher, delay time.Duration, logger *slog.Logger) *Throttled {
	return &Throttled{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  logger.With("component", "throttle"),
	}
}

func (t *Throttled) Open(ctx context.Context, url string) (types.Page, error) {
	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, &types.FetchError{URL: url, Err: err}
	}
	if waited := time.Since(start); waited > time.Millisecond {
		t.logger.Debug("open delayed", "url", url, "waited", waited)
	}
	return t.next.Open(ctx, url)
}

func (t *Throttled) Close() error { return t.next.Close() }

func (t *Throttled) Type() string { return t.next.Type() }
