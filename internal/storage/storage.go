package storage

import (
	"context"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Storage is the interface for all report backends.
type Storage interface {
	// Store persists the full record collection of one category.
	Store(ctx context.Context, cat config.Category, records []*types.Record) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}
