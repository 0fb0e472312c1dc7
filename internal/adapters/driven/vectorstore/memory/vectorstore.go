// Package memory provides an in-memory vector store, used in tests and
// as a reference implementation of the store contract.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

type collection struct {
	embeddingModel string
	entries        map[string]driven.Entry
	order          []string
}

// VectorStore is an in-memory implementation of driven.VectorStore
// using exact cosine distance.
type VectorStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates a new in-memory vector store.
func New() *VectorStore {
	return &VectorStore{collections: make(map[string]*collection)}
}

// EnsureCollection creates the collection if missing and verifies the
// embedding model on an existing one.
func (s *VectorStore) EnsureCollection(_ context.Context, name, embeddingModel string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		s.collections[name] = &collection{
			embeddingModel: embeddingModel,
			entries:        make(map[string]driven.Entry),
		}
		return nil
	}
	if col.embeddingModel != embeddingModel {
		return fmt.Errorf("collection %q built with %q, requested %q: %w",
			name, col.embeddingModel, embeddingModel, domain.ErrModelMismatch)
	}
	return nil
}

// DeleteCollection removes the collection and all its entries.
func (s *VectorStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[name]; !ok {
		return domain.ErrNotFound
	}
	delete(s.collections, name)
	return nil
}

// Upsert inserts or replaces entries by ID.
func (s *VectorStore) Upsert(_ context.Context, name string, entries []driven.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	for _, e := range entries {
		if _, exists := col.entries[e.ID]; !exists {
			col.order = append(col.order, e.ID)
		}
		col.entries[e.ID] = e
	}
	return nil
}

// Query returns the topK nearest entries by cosine distance, filtered
// by metadata equality when a filter is given.
func (s *VectorStore) Query(_ context.Context, name string, vector []float32, topK int, filter *domain.Filter) ([]driven.Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	col, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}

	var hits []driven.Hit
	for _, id := range col.order {
		e := col.entries[id]
		if filter != nil && !matchesFilter(e.Metadata, filter) {
			continue
		}
		hits = append(hits, driven.Hit{
			ID:       e.ID,
			Document: e.Document,
			Metadata: e.Metadata,
			Distance: cosineDistance(vector, e.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Close releases resources. No-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}

// Len reports the number of entries in a collection. Test helper.
func (s *VectorStore) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return 0
	}
	return len(col.entries)
}

// Get returns one entry by ID. Test helper.
func (s *VectorStore) Get(name, id string) (driven.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return driven.Entry{}, false
	}
	e, ok := col.entries[id]
	return e, ok
}

// matchesFilter applies the single-key equality constraint. Entries
// lacking the key never match.
func matchesFilter(meta map[string]any, filter *domain.Filter) bool {
	v, ok := meta[filter.Key]
	if !ok {
		return false
	}
	return fmt.Sprintf("%v", v) == filter.Value
}

// cosineDistance is 1 - cosine similarity; 0 means identical
// direction, 2 means opposite.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
