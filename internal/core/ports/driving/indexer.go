package driving

import (
	"context"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// IndexService builds vector store collections from extracted chunks.
type IndexService interface {
	// Build embeds the chunks in batches and upserts them into the
	// target collection, creating it if needed.
	Build(ctx context.Context, chunks []domain.Chunk, opts domain.BuildOptions) (domain.BuildStats, error)
}
