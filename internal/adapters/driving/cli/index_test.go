package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarch/scholarch-cli/internal/chunkio"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

func TestIndexCmd_RequiresCollection(t *testing.T) {
	setupTestServices(t, nil, nil, &mockIndexService{})

	_, err := execute(t, "index")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")
}

func TestIndexCmd_BuildsFromChunksFile(t *testing.T) {
	index := &mockIndexService{stats: domain.BuildStats{Chunks: 2, Batches: 1}}
	setupTestServices(t, nil, nil, index)

	chunksPath := filepath.Join(t.TempDir(), "chunks.jsonl")
	require.NoError(t, chunkio.WriteFile(chunksPath, []domain.Chunk{
		{ID: "a", Text: "first", Source: "one.html"},
		{ID: "b", Text: "second", Source: "two.html"},
	}))

	out, err := execute(t, "index",
		"--chunks", chunksPath,
		"--collection", "implementation_docs",
		"--batch-size", "32",
		"--reset")

	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 2 chunks")
	assert.Len(t, index.chunks, 2)
	assert.Equal(t, "implementation_docs", index.lastOpts.Collection)
	assert.Equal(t, 32, index.lastOpts.BatchSize)
	assert.True(t, index.lastOpts.Reset)
}

func TestIndexCmd_MissingChunksFile(t *testing.T) {
	setupTestServices(t, nil, nil, &mockIndexService{})

	_, err := execute(t, "index",
		"--chunks", filepath.Join(t.TempDir(), "absent.jsonl"),
		"--collection", "docs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading chunks")
}
