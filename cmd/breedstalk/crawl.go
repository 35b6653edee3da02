package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/engine"
	"github.com/IshaanNene/BreedStalk/internal/fetcher"
	"github.com/IshaanNene/BreedStalk/internal/observability"
	"github.com/IshaanNene/BreedStalk/internal/pipeline"
	"github.com/IshaanNene/BreedStalk/internal/storage"
)

var (
	outputPath  string
	poolSize    int
	fetcherType string
	failFast    bool
	dedupLinks  bool
)

// crawlCmd creates the "crawl" subcommand.
func crawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [category...]",
		Short: "Crawl breed categories and write reports",
		Long: `Crawl the given categories (default: all configured) and write
<output>/<category>.json and <output>/<category>.csv for each.

A category whose pagination or listing pages cannot be read fails as a
whole; the remaining categories still run and the exit status is non-zero.`,
		RunE: runCrawl,
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output directory (default from config)")
	cmd.Flags().IntVarP(&poolSize, "pool-size", "n", 0, "maximum detail pages open at once (default from config)")
	cmd.Flags().StringVar(&fetcherType, "fetcher", "", "page fetcher: browser, http")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop a category at the first entity failure")
	cmd.Flags().BoolVar(&dedupLinks, "dedup", false, "skip detail links already collected in the category")

	return cmd
}

// runCrawl executes the crawl command.
func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCLIOverrides(cmd, cfg)

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cats, err := selectCategories(cfg, args)
	if err != nil {
		return err
	}

	logger, closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(logger)
	if cfg.Metrics.Enabled {
		srv := metrics.StartServer(cfg.Metrics.Port, cfg.Metrics.Path)
		defer metrics.StopServer(srv)
	}

	f, err := fetcher.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}
	defer f.Close()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	crawler, err := engine.New(cfg, f, pipeline.FromConfig(cfg.Pipeline, logger), metrics, logger)
	if err != nil {
		return err
	}

	logger.Info("starting crawl",
		"categories", len(cats),
		"fetcher", f.Type(),
		"pool_size", cfg.Engine.PoolSize,
		"output", cfg.Storage.OutputPath,
	)

	start := time.Now()
	var errs []error
	for _, cat := range cats {
		if ctx.Err() != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", cat.Name, ctx.Err()))
			continue
		}

		res, runErr := crawler.Run(ctx, cat)
		if runErr != nil {
			logger.Error("category failed", "category", cat.Name, "error", runErr)
			errs = append(errs, runErr)
		}
		if res == nil {
			continue
		}

		if err := store.Store(ctx, cat, res.Records); err != nil {
			logger.Error("store failed", "category", cat.Name, "error", err)
			errs = append(errs, fmt.Errorf("category %s: %w", cat.Name, err))
			continue
		}
		metrics.RecordsStored.Add(int64(len(res.Records)))

		fmt.Printf("\n✅ %s: %d records from %d links (%d failed) in %s\n",
			cat.Name, len(res.Records), res.Links, len(res.Failures), res.Duration.Round(time.Millisecond))
		if cat.Output != "" {
			fmt.Printf("   Output:    %s/%s.{json,csv}\n", cfg.Storage.OutputPath, cat.Output)
		}
	}

	stats := metrics.Snapshot()
	logger.Info("crawl complete",
		"elapsed", time.Since(start),
		"pages", stats["pages_fetched"],
		"records", stats["records_extracted"],
		"failures", stats["extraction_failures"],
		"peak_active", stats["peak_active_tasks"],
	)

	fmt.Printf("\nCrawl finished in %s\n", time.Since(start).Round(time.Millisecond))
	fmt.Printf("   Pages:     %v opened, %v failed, %v retried\n", stats["pages_fetched"], stats["fetch_errors"], stats["fetch_retries"])
	fmt.Printf("   Records:   %v extracted, %v dropped, %v stored\n", stats["records_extracted"], stats["records_dropped"], stats["records_stored"])

	return errors.Join(errs...)
}

// openStorage returns the file reports backend, fanned out to MongoDB when
// it is enabled.
func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, error) {
	files, err := storage.NewFileStorage(cfg.Storage.OutputPath, logger)
	if err != nil {
		return nil, fmt.Errorf("create storage: %w", err)
	}
	if !cfg.Storage.Mongo.Enabled {
		return files, nil
	}

	mongo, err := storage.NewMongoStorage(ctx, cfg.Storage.Mongo, logger)
	if err != nil {
		files.Close()
		return nil, fmt.Errorf("create mongo storage: %w", err)
	}
	return storage.NewMultiStorage([]storage.Storage{files, mongo}, logger), nil
}

// applyCLIOverrides applies command-line flag values to the config.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	if outputPath != "" {
		cfg.Storage.OutputPath = outputPath
	}
	if poolSize > 0 {
		cfg.Engine.PoolSize = poolSize
	}
	if fetcherType != "" {
		cfg.Fetcher.Type = fetcherType
	}
	if cmd.Flags().Changed("fail-fast") {
		cfg.Engine.FailurePolicy = config.FailureIsolate
		if failFast {
			cfg.Engine.FailurePolicy = config.FailureFailFast
		}
	}
	if cmd.Flags().Changed("dedup") {
		cfg.Engine.DedupLinks = dedupLinks
	}
}
