package engine

import (
	"sync"

	"github.com/IshaanNene/BreedStalk/internal/types"
)

// Results is the append-only record collection shared by the workers of
// one category run. Order is completion order.
type Results struct {
	mu      sync.Mutex
	records []*types.Record
}

// NewResults creates an empty collection sized for capacity records.
func NewResults(capacity int) *Results {
	return &Results{records: make([]*types.Record, 0, capacity)}
}

// Append adds a record. Safe for concurrent use.
func (r *Results) Append(rec *types.Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

// Records returns a copy of the collected records.
func (r *Results) Records() []*types.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*types.Record(nil), r.records...)
}

// Len returns the number of collected records.
func (r *Results) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
