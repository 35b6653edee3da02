package storage

import (
	"context"
	"log/slog"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// MultiStorage writes records to multiple backends in order.
type MultiStorage struct {
	backends []Storage
	logger   *slog.Logger
}

// NewMultiStorage creates a storage that fans out to multiple backends.
func NewMultiStorage(backends []Storage, logger *slog.Logger) *MultiStorage {
	return &MultiStorage{
		backends: backends,
		logger:   logger.With("component", "multi_storage"),
	}
}

func (s *MultiStorage) Name() string { return "multi" }

// Store calls every backend even after one fails and returns the first error.
func (s *MultiStorage) Store(ctx context.Context, cat config.Category, records []*types.Record) error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Store(ctx, cat, records); err != nil {
			s.logger.Error("backend store failed", "backend", backend.Name(), "category", cat.Name, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (s *MultiStorage) Close() error {
	var firstErr error
	for _, backend := range s.backends {
		if err := backend.Close(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
