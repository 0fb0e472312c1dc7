package driving

import (
	"context"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

// RouterService classifies questions and dispatches them to the
// collection and filter their label maps to.
type RouterService interface {
	// Classify labels the question without querying anything.
	Classify(ctx context.Context, question string) (domain.Classification, error)

	// Route classifies the question, resolves its routing profile and
	// (unless the profile skips) runs a retrieval-augmented query.
	Route(ctx context.Context, question string, opts domain.RouteOptions) (*domain.RouteResult, error)
}
