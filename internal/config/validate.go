package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Engine.PoolSize < 1 {
		return fmt.Errorf("engine.pool_size must be >= 1, got %d", cfg.Engine.PoolSize)
	}
	if cfg.Engine.PoolSize > 64 {
		return fmt.Errorf("engine.pool_size must be <= 64, got %d", cfg.Engine.PoolSize)
	}
	if cfg.Engine.ListingConcurrency < 0 {
		return fmt.Errorf("engine.listing_concurrency must be >= 0, got %d", cfg.Engine.ListingConcurrency)
	}
	if cfg.Engine.MaxPages < 1 {
		return fmt.Errorf("engine.max_pages must be >= 1, got %d", cfg.Engine.MaxPages)
	}
	if cfg.Engine.TaskTimeout < 0 {
		return fmt.Errorf("engine.task_timeout must be >= 0")
	}
	if cfg.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("engine.request_timeout must be > 0")
	}
	if cfg.Engine.PolitenessDelay < 0 {
		return fmt.Errorf("engine.politeness_delay must be >= 0")
	}
	if cfg.Engine.MaxRetries < 0 {
		return fmt.Errorf("engine.max_retries must be >= 0, got %d", cfg.Engine.MaxRetries)
	}
	if cfg.Engine.MaxRetries > 0 && cfg.Engine.RetryDelay <= 0 {
		return fmt.Errorf("engine.retry_delay must be > 0 when retries are enabled")
	}
	if cfg.Engine.FailurePolicy != FailureIsolate && cfg.Engine.FailurePolicy != FailureFailFast {
		return fmt.Errorf("engine.failure_policy must be %q or %q, got %q",
			FailureIsolate, FailureFailFast, cfg.Engine.FailurePolicy)
	}

	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}
	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}

	if err := ValidateURL(cfg.Site.BaseURL); err != nil {
		return fmt.Errorf("site.base_url: %w", err)
	}
	selectors := map[string]string{
		"last_page":    cfg.Site.Selectors.LastPage,
		"listing_link": cfg.Site.Selectors.ListingLink,
		"name":         cfg.Site.Selectors.Name,
		"row":          cfg.Site.Selectors.Row,
		"label":        cfg.Site.Selectors.Label,
		"value":        cfg.Site.Selectors.Value,
	}
	for key, sel := range selectors {
		if sel == "" {
			return fmt.Errorf("site.selectors.%s must not be empty", key)
		}
	}

	if len(cfg.Categories) == 0 {
		return fmt.Errorf("at least one category must be configured")
	}
	seen := make(map[string]bool, len(cfg.Categories))
	for i, cat := range cfg.Categories {
		if err := ValidateCategory(cat); err != nil {
			return fmt.Errorf("categories[%d]: %w", i, err)
		}
		if seen[cat.Name] {
			return fmt.Errorf("categories[%d]: duplicate name %q", i, cat.Name)
		}
		seen[cat.Name] = true
	}

	if cfg.Storage.OutputPath == "" {
		return fmt.Errorf("storage.output_path must not be empty")
	}
	if cfg.Storage.Mongo.Enabled {
		if cfg.Storage.Mongo.URI == "" || cfg.Storage.Mongo.Database == "" {
			return fmt.Errorf("storage.mongo.uri and storage.mongo.database are required when mongo is enabled")
		}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateCategory checks a single category definition.
func ValidateCategory(cat Category) error {
	if cat.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if cat.Path == "" {
		return fmt.Errorf("category %q: path must not be empty", cat.Name)
	}
	if cat.Output == "" {
		return fmt.Errorf("category %q: output must not be empty", cat.Name)
	}
	if len(cat.Columns) == 0 {
		return fmt.Errorf("category %q: columns must not be empty", cat.Name)
	}
	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
