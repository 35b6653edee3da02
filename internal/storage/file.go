package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// FileStorage writes <output>.json and <output>.csv for each category
// under one output directory.
type FileStorage struct {
	dir    string
	mu     sync.Mutex
	count  int
	logger *slog.Logger
}

// NewFileStorage creates a file storage rooted at outputDir.
func NewFileStorage(outputDir string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, &types.StorageError{Backend: "file", Path: outputDir, Err: err}
	}

	return &FileStorage{
		dir:    outputDir,
		logger: logger.With("component", "file_storage"),
	}, nil
}

func (s *FileStorage) Name() string { return "file" }

// JSONPath returns the JSON report path for a category.
func (s *FileStorage) JSONPath(cat config.Category) string {
	return filepath.Join(s.dir, cat.Output+".json")
}

// CSVPath returns the CSV report path for a category.
func (s *FileStorage) CSVPath(cat config.Category) string {
	return filepath.Join(s.dir, cat.Output+".csv")
}

// Store writes the JSON report first, then the CSV report. A failed CSV
// write leaves the JSON file in place.
func (s *FileStorage) Store(ctx context.Context, cat config.Category, records []*types.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.WriteJSON(cat, records); err != nil {
		return err
	}
	if err := s.WriteCSV(cat, records); err != nil {
		return err
	}

	s.mu.Lock()
	s.count += len(records)
	s.mu.Unlock()
	return nil
}

// WriteJSON writes the JSON report for a category.
func (s *FileStorage) WriteJSON(cat config.Category, records []*types.Record) error {
	path := s.JSONPath(cat)
	data, err := MarshalJSON(records)
	if err != nil {
		return &types.StorageError{Backend: "json", Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &types.StorageError{Backend: "json", Path: path, Err: err}
	}
	s.logger.Info("JSON written", "category", cat.Name, "path", path, "records", len(records))
	return nil
}

// WriteCSV writes the CSV report for a category.
func (s *FileStorage) WriteCSV(cat config.Category, records []*types.Record) error {
	path := s.CSVPath(cat)
	if err := os.WriteFile(path, MarshalCSV(records, cat.Columns), 0o644); err != nil {
		return &types.StorageError{Backend: "csv", Path: path, Err: err}
	}
	s.logger.Info("CSV written", "category", cat.Name, "path", path, "records", len(records))
	return nil
}

// ReadJSON loads a previously written JSON report.
func (s *FileStorage) ReadJSON(cat config.Category) ([]*types.Record, error) {
	path := s.JSONPath(cat)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.StorageError{Backend: "json", Path: path, Err: err}
	}
	records, err := UnmarshalJSON(data)
	if err != nil {
		return nil, &types.StorageError{Backend: "json", Path: path, Err: err}
	}
	return records, nil
}

// RegenerateCSV rebuilds the CSV report from the saved JSON report
// without touching the network. It returns the number of records written.
func (s *FileStorage) RegenerateCSV(cat config.Category) (int, error) {
	records, err := s.ReadJSON(cat)
	if err != nil {
		return 0, err
	}
	if err := s.WriteCSV(cat, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

func (s *FileStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Info("file storage closing", "dir", s.dir, "total_records", s.count)
	return nil
}
