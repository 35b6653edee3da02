package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "breedstalk",
		Short: "BreedStalk - cat and dog breed crawler",
		Long: `BreedStalk crawls the cat and dog breed catalogs, reads every breed's
attribute table and writes one JSON and one CSV report per category.

Male and female height/weight ranges are split into separate columns.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(csvCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("BreedStalk %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			fmt.Printf("Engine:\n")
			fmt.Printf("  Pool Size:          %d\n", cfg.Engine.PoolSize)
			fmt.Printf("  Listing Concurrency: %d\n", cfg.Engine.ListingConcurrency)
			fmt.Printf("  Task Timeout:       %s\n", cfg.Engine.TaskTimeout)
			fmt.Printf("  Request Timeout:    %s\n", cfg.Engine.RequestTimeout)
			fmt.Printf("  Politeness Delay:   %s\n", cfg.Engine.PolitenessDelay)
			fmt.Printf("  Max Retries:        %d\n", cfg.Engine.MaxRetries)
			fmt.Printf("  Failure Policy:     %s\n", cfg.Engine.FailurePolicy)
			fmt.Printf("  Dedup Links:        %v\n", cfg.Engine.DedupLinks)
			fmt.Printf("  User Agents:        %d configured\n", len(cfg.Engine.UserAgents))
			fmt.Printf("\nFetcher:\n")
			fmt.Printf("  Type:               %s\n", cfg.Fetcher.Type)
			fmt.Printf("  Headless:           %v\n", cfg.Browser.Headless)
			fmt.Printf("  Stealth:            %v\n", cfg.Browser.Stealth)
			fmt.Printf("\nSite:\n")
			fmt.Printf("  Base URL:           %s\n", cfg.Site.BaseURL)
			for _, cat := range cfg.Categories {
				fmt.Printf("  %-19s %s -> %s (%s)\n", cat.Name+":", cat.Path, cat.Output, strings.Join(cat.Columns, ","))
			}
			fmt.Printf("\nStorage:\n")
			fmt.Printf("  Output Path:        %s\n", cfg.Storage.OutputPath)
			fmt.Printf("  MongoDB:            %v\n", cfg.Storage.Mongo.Enabled)
			fmt.Printf("\nMetrics:\n")
			fmt.Printf("  Enabled:            %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  Port:               %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}

// setupLogger creates a structured logger from the logging config.
// The returned closer releases a log file, if one was opened.
func setupLogger(cfg config.LoggingConfig) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	var (
		out    io.Writer = os.Stderr
		closer           = func() error { return nil }
	)
	switch cfg.Output {
	case "", "stderr":
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out, closer = f, f.Close
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler), closer, nil
}

// loadConfig reads the configuration from --config, env and defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// selectCategories resolves category names from the command line. No
// names means every configured category.
func selectCategories(cfg *config.Config, names []string) ([]config.Category, error) {
	if len(names) == 0 {
		return cfg.Categories, nil
	}

	cats := make([]config.Category, 0, len(names))
	for _, name := range names {
		cat, ok := cfg.Category(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q (known: %s)",
				types.ErrUnknownCategory, name, strings.Join(cfg.CategoryNames(), ", "))
		}
		cats = append(cats, cat)
	}
	return cats, nil
}
