package driven

import (
	"context"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// Entry is one record handed to the vector store for storage.
type Entry struct {
	// ID is the caller-assigned identifier. Upserting an existing ID
	// replaces the record.
	ID string

	// Embedding is the vector for nearest-neighbour search.
	Embedding []float32

	// Metadata is the flat key/value map queries can filter on.
	Metadata map[string]any

	// Document is the original chunk text, stored for retrieval.
	Document string
}

// Hit is one ranked result from a vector query.
type Hit struct {
	ID       string
	Document string
	Metadata map[string]any

	// Distance is the cosine distance to the query vector.
	// Lower is more similar.
	Distance float64
}

// VectorStore persists embeddings in named collections and serves
// nearest-neighbour queries over them.
//
// Implementations may include:
//   - Chroma (HTTP server)
//   - SQLite (embedded, brute-force scan)
//   - In-memory (tests)
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist and
	// records the embedding model it was built with. Returns
	// domain.ErrModelMismatch when the collection exists but was built
	// with a different model.
	EnsureCollection(ctx context.Context, name, embeddingModel string) error

	// DeleteCollection removes the collection and all its records.
	// Returns domain.ErrNotFound when the collection does not exist.
	DeleteCollection(ctx context.Context, name string) error

	// Upsert inserts or replaces entries by ID.
	Upsert(ctx context.Context, collection string, entries []Entry) error

	// Query returns the topK nearest entries to the given vector,
	// most similar first. A non-nil filter restricts candidates to
	// records whose metadata matches the equality constraint; records
	// lacking the key never match.
	Query(ctx context.Context, collection string, vector []float32, topK int, filter *domain.Filter) ([]Hit, error)

	// Close releases resources.
	Close() error
}
