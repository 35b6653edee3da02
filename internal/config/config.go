package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Failure policies for the extraction pool.
const (
	FailureIsolate  = "isolate"
	FailureFailFast = "fail_fast"
)

// Config is the root configuration for BreedStalk.
type Config struct {
	Engine     EngineConfig   `mapstructure:"engine"     yaml:"engine"`
	Fetcher    FetcherConfig  `mapstructure:"fetcher"    yaml:"fetcher"`
	Browser    BrowserConfig  `mapstructure:"browser"    yaml:"browser"`
	Site       SiteConfig     `mapstructure:"site"       yaml:"site"`
	Categories []Category     `mapstructure:"categories" yaml:"categories"`
	Pipeline   PipelineConfig `mapstructure:"pipeline"   yaml:"pipeline"`
	Storage    StorageConfig  `mapstructure:"storage"    yaml:"storage"`
	Logging    LoggingConfig  `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig  `mapstructure:"metrics"    yaml:"metrics"`
}

// EngineConfig controls pagination, link collection and the extraction pool.
type EngineConfig struct {
	PoolSize           int           `mapstructure:"pool_size"           yaml:"pool_size"`
	ListingConcurrency int           `mapstructure:"listing_concurrency" yaml:"listing_concurrency"` // 0 = one task per listing page
	MaxPages           int           `mapstructure:"max_pages"           yaml:"max_pages"`           // upper bound on listing pages per category
	TaskTimeout        time.Duration `mapstructure:"task_timeout"        yaml:"task_timeout"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"     yaml:"request_timeout"`
	PolitenessDelay    time.Duration `mapstructure:"politeness_delay"    yaml:"politeness_delay"`
	MaxRetries         int           `mapstructure:"max_retries"         yaml:"max_retries"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"         yaml:"retry_delay"`
	FailurePolicy      string        `mapstructure:"failure_policy"      yaml:"failure_policy"`
	DedupLinks         bool          `mapstructure:"dedup_links"         yaml:"dedup_links"`
	UserAgents         []string      `mapstructure:"user_agents"         yaml:"user_agents"`
}

// FetcherConfig controls which PageFetcher is used and its HTTP transport.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"` // browser, http
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// BrowserConfig controls the headless browser fetcher.
type BrowserConfig struct {
	Headless   bool          `mapstructure:"headless"    yaml:"headless"`
	Stealth    bool          `mapstructure:"stealth"     yaml:"stealth"`
	Bin        string        `mapstructure:"bin"         yaml:"bin"`
	ControlURL string        `mapstructure:"control_url" yaml:"control_url"` // connect to a running browser instead of launching
	WaitStable time.Duration `mapstructure:"wait_stable" yaml:"wait_stable"`
}

// SiteConfig describes the crawled host and where things live in its markup.
type SiteConfig struct {
	BaseURL   string          `mapstructure:"base_url"  yaml:"base_url"`
	Selectors SelectorsConfig `mapstructure:"selectors" yaml:"selectors"`
}

// SelectorsConfig holds the selectors used by the crawler. A selector
// starting with "xpath:" is evaluated as XPath.
type SelectorsConfig struct {
	LastPage    string `mapstructure:"last_page"    yaml:"last_page"`
	ListingLink string `mapstructure:"listing_link" yaml:"listing_link"`
	Name        string `mapstructure:"name"         yaml:"name"`
	Row         string `mapstructure:"row"          yaml:"row"`
	Label       string `mapstructure:"label"        yaml:"label"`
	Value       string `mapstructure:"value"        yaml:"value"`
}

// Category is one top-level grouping of entities with its own listing
// pages and report layout.
type Category struct {
	Name         string   `mapstructure:"name"          yaml:"name"`
	Path         string   `mapstructure:"path"          yaml:"path"`
	Output       string   `mapstructure:"output"        yaml:"output"`
	Columns      []string `mapstructure:"columns"       yaml:"columns"`
	NameSuffixes []string `mapstructure:"name_suffixes" yaml:"name_suffixes"`
}

// PipelineConfig controls the record pipeline run before results are collected.
type PipelineConfig struct {
	Trim           bool     `mapstructure:"trim"             yaml:"trim"`
	Sanitize       bool     `mapstructure:"sanitize"         yaml:"sanitize"` // strip tags, decode entities, collapse whitespace
	RequiredFields []string `mapstructure:"required_fields"  yaml:"required_fields"`
	DedupByName    bool     `mapstructure:"dedup_by_name"    yaml:"dedup_by_name"`
}

// StorageConfig controls output.
type StorageConfig struct {
	OutputPath string      `mapstructure:"output_path" yaml:"output_path"`
	Mongo      MongoConfig `mapstructure:"mongo"       yaml:"mongo"`
}

// MongoConfig controls the optional MongoDB record sink.
type MongoConfig struct {
	Enabled  bool          `mapstructure:"enabled"  yaml:"enabled"`
	URI      string        `mapstructure:"uri"      yaml:"uri"`
	Database string        `mapstructure:"database" yaml:"database"`
	Timeout  time.Duration `mapstructure:"timeout"  yaml:"timeout"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// Category returns the configured category with the given name.
func (c *Config) Category(name string) (Category, bool) {
	for _, cat := range c.Categories {
		if cat.Name == name {
			return cat, true
		}
	}
	return Category{}, false
}

// CategoryNames returns configured category names in order.
func (c *Config) CategoryNames() []string {
	names := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		names[i] = cat.Name
	}
	return names
}

// DefaultCategories returns the cat and dog breed categories.
func DefaultCategories() []Category {
	return []Category{
		{
			Name:         "cats",
			Path:         "/cats/cat-breeds",
			Output:       "cat-breeds",
			Columns:      []string{"name", "size", "weight", "coat", "color"},
			NameSuffixes: []string{"Cat Breed", "Cat"},
		},
		{
			Name:   "dogs",
			Path:   "/dogs/dog-breeds",
			Output: "dog-breeds",
			Columns: []string{
				"name", "size",
				"heightMale", "heightFemale",
				"weightMale", "weightFemale",
				"coat", "color", "energy", "activities",
			},
			NameSuffixes: []string{"Dog Breed", "Dog"},
		},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			PoolSize:           3,
			ListingConcurrency: 8,
			MaxPages:           1000,
			TaskTimeout:        60 * time.Second,
			RequestTimeout:     30 * time.Second,
			PolitenessDelay:    0,
			MaxRetries:         2,
			RetryDelay:         time.Second,
			FailurePolicy:      FailureIsolate,
			DedupLinks:         false,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
		},
		Fetcher: FetcherConfig{
			Type:            "browser",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Browser: BrowserConfig{
			Headless:   true,
			WaitStable: 300 * time.Millisecond,
		},
		Site: SiteConfig{
			BaseURL: "http://www.purina.com",
			Selectors: SelectorsConfig{
				LastPage:    ".paginationSkip_last",
				ListingLink: ".callout-bd .link",
				Name:        ".statsDef-content-list-hd",
				Row:         ".statsDef-content-list-item",
				Label:       ".statsDef-content-list-item-label",
				Value:       ".statsDef-content-list-item-value",
			},
		},
		Categories: DefaultCategories(),
		Pipeline: PipelineConfig{
			Trim: true,
		},
		Storage: StorageConfig{
			OutputPath: "./data",
			Mongo: MongoConfig{
				URI:      "mongodb://localhost:27017",
				Database: "breedstalk",
				Timeout:  10 * time.Second,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
