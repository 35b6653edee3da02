package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDefaultCategories(t *testing.T) {
	cfg := DefaultConfig()

	cats, ok := cfg.Category("cats")
	if !ok {
		t.Fatal("expected cats category")
	}
	if got := strings.Join(cats.Columns, ","); got != "name,size,weight,coat,color" {
		t.Errorf("unexpected cat columns %q", got)
	}

	dogs, ok := cfg.Category("dogs")
	if !ok {
		t.Fatal("expected dogs category")
	}
	want := "name,size,heightMale,heightFemale,weightMale,weightFemale,coat,color,energy,activities"
	if got := strings.Join(dogs.Columns, ","); got != want {
		t.Errorf("unexpected dog columns %q", got)
	}
	if dogs.Output != "dog-breeds" {
		t.Errorf("expected dog-breeds output, got %q", dogs.Output)
	}

	if _, ok := cfg.Category("birds"); ok {
		t.Error("did not expect birds category")
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero pool", func(c *Config) { c.Engine.PoolSize = 0 }, "pool_size"},
		{"negative listing", func(c *Config) { c.Engine.ListingConcurrency = -1 }, "listing_concurrency"},
		{"zero max pages", func(c *Config) { c.Engine.MaxPages = 0 }, "max_pages"},
		{"bad policy", func(c *Config) { c.Engine.FailurePolicy = "explode" }, "failure_policy"},
		{"bad fetcher", func(c *Config) { c.Fetcher.Type = "ftp" }, "fetcher.type"},
		{"bad base url", func(c *Config) { c.Site.BaseURL = "ftp://x" }, "site.base_url"},
		{"empty selector", func(c *Config) { c.Site.Selectors.Row = "" }, "site.selectors.row"},
		{"no categories", func(c *Config) { c.Categories = nil }, "category"},
		{"duplicate category", func(c *Config) {
			c.Categories = append(c.Categories, c.Categories[0])
		}, "duplicate"},
		{"category without columns", func(c *Config) { c.Categories[0].Columns = nil }, "columns"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"mongo without uri", func(c *Config) {
			c.Storage.Mongo.Enabled = true
			c.Storage.Mongo.URI = ""
		}, "mongo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "breedstalk.yaml")
	content := `
engine:
  pool_size: 8
  failure_policy: fail_fast
  task_timeout: 15s
fetcher:
  type: http
categories:
  - name: birds
    path: /birds/bird-breeds
    output: bird-breeds
    columns: [name, size]
    name_suffixes: [Bird]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.PoolSize != 8 {
		t.Errorf("expected pool size 8, got %d", cfg.Engine.PoolSize)
	}
	if cfg.Engine.FailurePolicy != FailureFailFast {
		t.Errorf("expected fail_fast, got %q", cfg.Engine.FailurePolicy)
	}
	if cfg.Engine.TaskTimeout != 15*time.Second {
		t.Errorf("expected 15s task timeout, got %s", cfg.Engine.TaskTimeout)
	}
	if cfg.Fetcher.Type != "http" {
		t.Errorf("expected http fetcher, got %q", cfg.Fetcher.Type)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Name != "birds" {
		t.Fatalf("expected only birds category, got %+v", cfg.Categories)
	}
	if cfg.Site.Selectors.Name != ".statsDef-content-list-hd" {
		t.Errorf("expected default name selector, got %q", cfg.Site.Selectors.Name)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("loaded config invalid: %v", err)
	}
}

func TestLoadCategoriesReplaceDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breedstalk.yaml")
	content := `
categories:
  - name: dogs
    path: /dogs/dog-breeds
    output: dog-breeds
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Categories) != 1 {
		t.Fatalf("expected 1 category, got %d", len(cfg.Categories))
	}
	if cols := cfg.Categories[0].Columns; len(cols) != 0 {
		t.Errorf("expected no inherited columns, got %v", cols)
	}
	if err := ValidateCategory(cfg.Categories[0]); err == nil || !strings.Contains(err.Error(), "columns") {
		t.Errorf("expected columns error, got %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BREEDSTALK_ENGINE_POOL_SIZE", "5")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.PoolSize != 5 {
		t.Errorf("expected env override pool size 5, got %d", cfg.Engine.PoolSize)
	}
	if len(cfg.Categories) != 2 {
		t.Errorf("expected default categories, got %d", len(cfg.Categories))
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("http://www.purina.com"); err != nil {
		t.Errorf("expected valid URL: %v", err)
	}
	for _, bad := range []string{"mailto:x@y", "http://", "://bad"} {
		if err := ValidateURL(bad); err == nil {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}
