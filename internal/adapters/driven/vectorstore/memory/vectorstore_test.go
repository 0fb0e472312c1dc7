package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
)

func seed(t *testing.T, s *VectorStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", "test-model"))
	require.NoError(t, s.Upsert(ctx, "docs", []driven.Entry{
		{ID: "a", Embedding: []float32{1, 0}, Metadata: map[string]any{"kind": "class"}, Document: "class doc"},
		{ID: "b", Embedding: []float32{0, 1}, Metadata: map[string]any{"kind": "tutorial"}, Document: "tutorial doc"},
		{ID: "c", Embedding: []float32{0.9, 0.1}, Metadata: map[string]any{"kind": "class"}, Document: "another class"},
	}))
}

// TestEnsureCollection_ModelMismatch tests the embedding model check
func TestEnsureCollection_ModelMismatch(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.EnsureCollection(ctx, "docs", "model-a"))
	require.NoError(t, s.EnsureCollection(ctx, "docs", "model-a"), "same model is fine")

	err := s.EnsureCollection(ctx, "docs", "model-b")
	assert.ErrorIs(t, err, domain.ErrModelMismatch)
}

// TestDeleteCollection tests deletion and the not-found error
func TestDeleteCollection(t *testing.T) {
	s := New()
	ctx := context.Background()

	assert.ErrorIs(t, s.DeleteCollection(ctx, "docs"), domain.ErrNotFound)

	require.NoError(t, s.EnsureCollection(ctx, "docs", "m"))
	require.NoError(t, s.DeleteCollection(ctx, "docs"))
	assert.Equal(t, 0, s.Len("docs"))
}

// TestUpsert_Idempotent tests that re-upserting an ID replaces
func TestUpsert_Idempotent(t *testing.T) {
	s := New()
	seed(t, s)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "docs", []driven.Entry{
		{ID: "a", Embedding: []float32{0, 1}, Metadata: map[string]any{"kind": "page"}, Document: "replaced"},
	}))

	assert.Equal(t, 3, s.Len("docs"))
	e, ok := s.Get("docs", "a")
	require.True(t, ok)
	assert.Equal(t, "replaced", e.Document)
}

// TestUpsert_MissingCollection tests upserting before creation
func TestUpsert_MissingCollection(t *testing.T) {
	s := New()
	err := s.Upsert(context.Background(), "nope", []driven.Entry{{ID: "a"}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestQuery_RankedByDistance tests cosine ranking
func TestQuery_RankedByDistance(t *testing.T) {
	s := New()
	seed(t, s)

	hits, err := s.Query(context.Background(), "docs", []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "c", hits[1].ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)
}

// TestQuery_Filter tests metadata equality filtering
func TestQuery_Filter(t *testing.T) {
	s := New()
	seed(t, s)

	hits, err := s.Query(context.Background(), "docs", []float32{0, 1}, 10, &domain.Filter{Key: "kind", Value: "class"})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, h := range hits {
		assert.Equal(t, "class", h.Metadata["kind"])
	}
}

// TestQuery_FilterNoMatch tests that an unmatched filter yields empty
func TestQuery_FilterNoMatch(t *testing.T) {
	s := New()
	seed(t, s)

	hits, err := s.Query(context.Background(), "docs", []float32{1, 0}, 10, &domain.Filter{Key: "kind", Value: "namespace"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// TestQuery_FilterMissingKey tests that entries lacking the key never
// match
func TestQuery_FilterMissingKey(t *testing.T) {
	s := New()
	seed(t, s)

	hits, err := s.Query(context.Background(), "docs", []float32{1, 0}, 10, &domain.Filter{Key: "topic", Value: "motion_planning"})
	require.NoError(t, err)
	assert.Empty(t, hits)
}

// TestQuery_IntFilterValue tests matching numeric metadata against the
// string filter value
func TestQuery_IntFilterValue(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.EnsureCollection(ctx, "docs", "m"))
	require.NoError(t, s.Upsert(ctx, "docs", []driven.Entry{
		{ID: "a", Embedding: []float32{1}, Metadata: map[string]any{"chunk_index": 3}},
	}))

	hits, err := s.Query(ctx, "docs", []float32{1}, 10, &domain.Filter{Key: "chunk_index", Value: "3"})
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}
