package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/storage"
)

var csvOutputPath string

// csvCmd creates the "csv" subcommand.
func csvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csv [category...]",
		Short: "Regenerate CSV reports from saved JSON",
		Long:  "Rebuild <output>/<category>.csv from <output>/<category>.json without touching the network.",
		RunE:  runCSV,
	}

	cmd.Flags().StringVarP(&csvOutputPath, "output", "o", "", "output directory (default from config)")

	return cmd
}

func runCSV(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if csvOutputPath != "" {
		cfg.Storage.OutputPath = csvOutputPath
	}
	cats, err := selectCategories(cfg, args)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		if err := config.ValidateCategory(cat); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}

	logger, closeLog, err := setupLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	files, err := storage.NewFileStorage(cfg.Storage.OutputPath, logger)
	if err != nil {
		return fmt.Errorf("create storage: %w", err)
	}
	defer files.Close()

	var errs []error
	for _, cat := range cats {
		n, err := files.RegenerateCSV(cat)
		if err != nil {
			logger.Error("csv regeneration failed", "category", cat.Name, "error", err)
			errs = append(errs, fmt.Errorf("category %s: %w", cat.Name, err))
			continue
		}
		fmt.Printf("✅ %s: %d records -> %s\n", cat.Name, n, files.CSVPath(cat))
	}
	return errors.Join(errs...)
}
