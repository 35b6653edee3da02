package pipeline

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/IshaanNene/BreedStalk/internal/config"
	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Middleware processes a record and returns the (possibly modified) record.
// Return nil to drop the record from the pipeline.
type Middleware interface {
	// Name returns the middleware's identifier.
	Name() string

	// Process transforms a record. Return nil to drop the record.
	Process(rec *types.Record) (*types.Record, error)
}

// Pipeline chains middleware processors together. It is called from
// every extraction worker, so middleware must be safe for concurrent use.
type Pipeline struct {
	middlewares []Middleware
	logger      *slog.Logger
}

// New creates a new Pipeline.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{
		logger: logger.With("component", "pipeline"),
	}
}

// FromConfig builds the pipeline described by cfg.
func FromConfig(cfg config.PipelineConfig, logger *slog.Logger) *Pipeline {
	p := New(logger)
	if cfg.Trim {
		p.Use(&TrimMiddleware{})
	}
	if cfg.Sanitize {
		p.Use(NewSanitizeMiddleware())
	}
	if len(cfg.RequiredFields) > 0 {
		p.Use(&RequiredFieldsMiddleware{Fields: cfg.RequiredFields})
	}
	if cfg.DedupByName {
		p.Use(NewDedupMiddleware("name"))
	}
	return p
}

// Use adds a middleware to the pipeline chain.
func (p *Pipeline) Use(mw Middleware) {
	p.middlewares = append(p.middlewares, mw)
	p.logger.Debug("middleware added", "name", mw.Name(), "position", len(p.middlewares))
}

// Process runs the record through all middleware in order.
func (p *Pipeline) Process(rec *types.Record) (*types.Record, error) {
	current := rec

	for _, mw := range p.middlewares {
		result, err := mw.Process(current)
		if err != nil {
			return nil, &types.PipelineError{
				Stage:  mw.Name(),
				Record: current,
				Err:    err,
			}
		}
		if result == nil {
			p.logger.Debug("record dropped", "stage", mw.Name(), "name", rec.Name())
			return nil, nil
		}
		current = result
	}

	return current, nil
}

// Len returns the number of middleware in the chain.
func (p *Pipeline) Len() int {
	return len(p.middlewares)
}

// --- Built-in Middleware ---

// TrimMiddleware trims whitespace from all fields.
type TrimMiddleware struct{}

func (m *TrimMiddleware) Name() string { return "trim" }

func (m *TrimMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, key := range rec.Keys() {
		if s := rec.GetString(key); s != "" {
			rec.Set(key, strings.TrimSpace(s))
		}
	}
	return rec, nil
}

// RequiredFieldsMiddleware drops records missing required fields or
// holding an empty value for one.
type RequiredFieldsMiddleware struct {
	Fields []string
}

func (m *RequiredFieldsMiddleware) Name() string { return "required_fields" }

func (m *RequiredFieldsMiddleware) Process(rec *types.Record) (*types.Record, error) {
	for _, field := range m.Fields {
		if rec.GetString(field) == "" {
			return nil, nil
		}
	}
	return rec, nil
}

// DedupMiddleware drops records whose key field was already seen.
type DedupMiddleware struct {
	mu   sync.Mutex
	seen map[string]struct{}
	key  string
}

func NewDedupMiddleware(key string) *DedupMiddleware {
	return &DedupMiddleware{
		seen: make(map[string]struct{}),
		key:  key,
	}
}

func (m *DedupMiddleware) Name() string { return "dedup" }

func (m *DedupMiddleware) Process(rec *types.Record) (*types.Record, error) {
	val := rec.GetString(m.key)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.seen[val]; exists {
		return nil, nil
	}
	m.seen[val] = struct{}{}
	return rec, nil
}
