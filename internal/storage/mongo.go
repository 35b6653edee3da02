package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// MongoStorage writes records to one collection per category.
type MongoStorage struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
	mu      sync.Mutex
	count   int
	logger  *slog.Logger
}

// NewMongoStorage connects to MongoDB and verifies the connection.
func NewMongoStorage(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*MongoStorage, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	return &MongoStorage{
		client:  client,
		db:      client.Database(cfg.Database),
		timeout: cfg.Timeout,
		logger:  logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStorage) Name() string { return "mongodb" }

func (s *MongoStorage) Store(ctx context.Context, cat config.Category, records []*types.Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := RecordDocuments(records, time.Now().UTC())

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Collection(cat.Name).InsertMany(ctx, docs); err != nil {
		return &types.StorageError{Backend: "mongodb", Path: cat.Name, Err: fmt.Errorf("insert: %w", err)}
	}

	s.mu.Lock()
	s.count += len(records)
	total := s.count
	s.mu.Unlock()

	s.logger.Debug("records stored in mongodb", "category", cat.Name, "count", len(records), "total", total)
	return nil
}

// RecordDocuments converts records to ordered BSON documents stamped
// with the crawl time.
func RecordDocuments(records []*types.Record, crawledAt time.Time) []any {
	docs := make([]any, len(records))
	for i, rec := range records {
		doc := make(bson.D, 0, rec.Len()+1)
		for _, k := range rec.Keys() {
			doc = append(doc, bson.E{Key: k, Value: rec.GetString(k)})
		}
		doc = append(doc, bson.E{Key: "_crawled_at", Value: crawledAt})
		docs[i] = doc
	}
	return docs
}

func (s *MongoStorage) Close() error {
	s.mu.Lock()
	total := s.count
	s.mu.Unlock()

	s.logger.Info("mongodb storage closing", "total_records", total)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
