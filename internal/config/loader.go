package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and CLI flags.
// Priority (highest to lowest): CLI flags > env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("BREEDSTALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("breedstalk")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".breedstalk"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	// Categories from a file replace the defaults instead of being decoded
	// over them.
	if v.IsSet("categories") {
		cfg.Categories = nil
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper. Categories are not
// registered here; they stay at DefaultCategories unless a file sets them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("engine.pool_size", cfg.Engine.PoolSize)
	v.SetDefault("engine.listing_concurrency", cfg.Engine.ListingConcurrency)
	v.SetDefault("engine.max_pages", cfg.Engine.MaxPages)
	v.SetDefault("engine.task_timeout", cfg.Engine.TaskTimeout)
	v.SetDefault("engine.request_timeout", cfg.Engine.RequestTimeout)
	v.SetDefault("engine.politeness_delay", cfg.Engine.PolitenessDelay)
	v.SetDefault("engine.max_retries", cfg.Engine.MaxRetries)
	v.SetDefault("engine.retry_delay", cfg.Engine.RetryDelay)
	v.SetDefault("engine.failure_policy", cfg.Engine.FailurePolicy)
	v.SetDefault("engine.dedup_links", cfg.Engine.DedupLinks)
	v.SetDefault("engine.user_agents", cfg.Engine.UserAgents)

	v.SetDefault("fetcher.type", cfg.Fetcher.Type)
	v.SetDefault("fetcher.follow_redirects", cfg.Fetcher.FollowRedirects)
	v.SetDefault("fetcher.max_redirects", cfg.Fetcher.MaxRedirects)
	v.SetDefault("fetcher.max_body_size", cfg.Fetcher.MaxBodySize)
	v.SetDefault("fetcher.tls_insecure", cfg.Fetcher.TLSInsecure)
	v.SetDefault("fetcher.idle_conn_timeout", cfg.Fetcher.IdleConnTimeout)
	v.SetDefault("fetcher.max_idle_conns", cfg.Fetcher.MaxIdleConns)

	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.stealth", cfg.Browser.Stealth)
	v.SetDefault("browser.bin", cfg.Browser.Bin)
	v.SetDefault("browser.control_url", cfg.Browser.ControlURL)
	v.SetDefault("browser.wait_stable", cfg.Browser.WaitStable)

	v.SetDefault("site.base_url", cfg.Site.BaseURL)
	v.SetDefault("site.selectors.last_page", cfg.Site.Selectors.LastPage)
	v.SetDefault("site.selectors.listing_link", cfg.Site.Selectors.ListingLink)
	v.SetDefault("site.selectors.name", cfg.Site.Selectors.Name)
	v.SetDefault("site.selectors.row", cfg.Site.Selectors.Row)
	v.SetDefault("site.selectors.label", cfg.Site.Selectors.Label)
	v.SetDefault("site.selectors.value", cfg.Site.Selectors.Value)

	v.SetDefault("pipeline.trim", cfg.Pipeline.Trim)
	v.SetDefault("pipeline.sanitize", cfg.Pipeline.Sanitize)
	v.SetDefault("pipeline.required_fields", cfg.Pipeline.RequiredFields)
	v.SetDefault("pipeline.dedup_by_name", cfg.Pipeline.DedupByName)

	v.SetDefault("storage.output_path", cfg.Storage.OutputPath)
	v.SetDefault("storage.mongo.enabled", cfg.Storage.Mongo.Enabled)
	v.SetDefault("storage.mongo.uri", cfg.Storage.Mongo.URI)
	v.SetDefault("storage.mongo.database", cfg.Storage.Mongo.Database)
	v.SetDefault("storage.mongo.timeout", cfg.Storage.Mongo.Timeout)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.output", cfg.Logging.Output)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
