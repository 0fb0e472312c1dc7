package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driven"
	"github.com/scholarch/scholarch-cli/internal/core/ports/driving"
	"github.com/scholarch/scholarch-cli/internal/logger"
)

// DefaultBatchSize is the number of chunks embedded and upserted per
// batch.
const DefaultBatchSize = 64

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// IndexService builds vector store collections from chunk records.
type IndexService struct {
	store    driven.VectorStore
	embedder driven.EmbeddingService
}

// NewIndexService creates a new index service.
func NewIndexService(store driven.VectorStore, embedder driven.EmbeddingService) *IndexService {
	return &IndexService{store: store, embedder: embedder}
}

// Build embeds chunks in fixed-size batches and upserts them into the
// target collection. A failing batch aborts the whole build and is
// reported with its index; there is no partial-success path. Upserts
// are idempotent by chunk ID, so re-running a build overwrites rather
// than duplicates.
func (s *IndexService) Build(ctx context.Context, chunks []domain.Chunk, opts domain.BuildOptions) (domain.BuildStats, error) {
	var stats domain.BuildStats

	if opts.Collection == "" {
		return stats, fmt.Errorf("%w: collection name required", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return stats, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return stats, domain.ErrStoreUnavailable
	}

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	logger.Section("Index Build")
	logger.Debug("Collection: %s, chunks: %d, batch size: %d, reset: %t",
		opts.Collection, len(chunks), batchSize, opts.Reset)

	if opts.Reset {
		err := s.store.DeleteCollection(ctx, opts.Collection)
		switch {
		case err == nil:
			logger.Info("Deleted existing collection %q", opts.Collection)
		case errors.Is(err, domain.ErrNotFound):
			// Nothing to delete on the first build.
		default:
			return stats, fmt.Errorf("reset collection: %w", err)
		}
	}

	if err := s.store.EnsureCollection(ctx, opts.Collection, s.embedder.ModelName()); err != nil {
		return stats, fmt.Errorf("ensure collection: %w", err)
	}

	for start := 0; start < len(chunks); start += batchSize {
		end := start + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		batchIdx := start / batchSize

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return stats, fmt.Errorf("embed batch %d: %w", batchIdx, err)
		}
		if len(vectors) != len(batch) {
			return stats, fmt.Errorf("embed batch %d: got %d vectors for %d texts", batchIdx, len(vectors), len(batch))
		}

		entries := make([]driven.Entry, len(batch))
		for i, c := range batch {
			entries[i] = driven.Entry{
				ID:        c.ID,
				Embedding: vectors[i],
				Metadata:  c.Metadata(),
				Document:  c.Text,
			}
		}

		if err := s.store.Upsert(ctx, opts.Collection, entries); err != nil {
			return stats, fmt.Errorf("upsert batch %d: %w", batchIdx, err)
		}

		stats.Chunks += len(batch)
		stats.Batches++
		logger.Debug("Batch %d: upserted %d chunks", batchIdx, len(batch))
	}

	logger.Info("Indexed %d chunks into %q in %d batches", stats.Chunks, opts.Collection, stats.Batches)
	return stats, nil
}
