package driving

import (
	"context"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// QueryService answers questions over an indexed collection.
type QueryService interface {
	// Ask retrieves context for the question and generates an answer.
	Ask(ctx context.Context, question string, opts domain.QueryOptions) (*domain.QueryResult, error)

	// Retrieve performs retrieval only, without answer generation.
	Retrieve(ctx context.Context, question string, opts domain.QueryOptions) (*domain.QueryResult, error)
}
