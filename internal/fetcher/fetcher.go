package fetcher

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Fetcher opens pages for the crawler. Every Open call returns a page
// isolated from all other open pages; the caller owns it and must Close it.
type Fetcher interface {
	// Open navigates to url and returns the loaded page.
	Open(ctx context.Context, url string) (types.Page, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}

// New creates the fetcher selected by cfg.Fetcher.Type. When a politeness
// delay is configured the fetcher is wrapped in a rate limiter.
func New(cfg *config.Config, logger *slog.Logger) (Fetcher, error) {
	var (
		f   Fetcher
		err error
	)
	switch cfg.Fetcher.Type {
	case "http":
		f, err = NewHTTPFetcher(cfg, logger)
	case "browser":
		f, err = NewBrowserFetcher(cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported fetcher type: %s", cfg.Fetcher.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Engine.PolitenessDelay > 0 {
		f = NewThrottled(f, cfg.Engine.PolitenessDelay, logger)
	}
	return f, nil
}
