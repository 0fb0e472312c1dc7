package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [question]", queryCmd.Use)
}

func TestQueryCmd_HasFlags(t *testing.T) {
	for _, name := range []string{"collection", "top-k", "no-auto-filter", "kind", "topic", "instructions", "retrieve-only", "json"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

func TestQueryCmd_RequiresCollection(t *testing.T) {
	setupTestServices(t, &mockQueryService{}, nil, nil)

	_, err := execute(t, "query", "some question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection")
}

func TestQueryCmd_PrintsAnswerAndSources(t *testing.T) {
	query := &mockQueryService{
		result: &domain.QueryResult{
			Answer:       "PRM builds a roadmap.",
			InferredKind: domain.KindClass,
			Context: []domain.RetrievedChunk{
				{ID: "c1", Distance: 0.15, Metadata: map[string]any{"source": "classPRM.html"}},
			},
		},
	}
	setupTestServices(t, query, nil, nil)

	out, err := execute(t, "query", "-c", "implementation_docs", "what is the PRM class?")

	require.NoError(t, err)
	assert.Contains(t, out, "PRM builds a roadmap.")
	assert.Contains(t, out, "classPRM.html")
	assert.Contains(t, out, "Inferred kind: class")
	assert.Equal(t, "implementation_docs", query.lastOpts.Collection)
	assert.True(t, query.lastOpts.AutoFilter)
}

func TestQueryCmd_ExplicitKindFilter(t *testing.T) {
	query := &mockQueryService{result: &domain.QueryResult{}}
	setupTestServices(t, query, nil, nil)

	_, err := execute(t, "query", "-c", "docs", "--kind", "tutorial", "show tutorials")

	require.NoError(t, err)
	require.NotNil(t, query.lastOpts.Filter)
	assert.Equal(t, domain.Filter{Key: "kind", Value: "tutorial"}, *query.lastOpts.Filter)
}

func TestQueryCmd_KindAndTopicExclusive(t *testing.T) {
	setupTestServices(t, &mockQueryService{result: &domain.QueryResult{}}, nil, nil)

	_, err := execute(t, "query", "-c", "docs", "--kind", "class", "--topic", "motion_planning", "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestQueryCmd_FallbackNote(t *testing.T) {
	query := &mockQueryService{
		result: &domain.QueryResult{
			Answer:       "answer",
			InferredKind: domain.KindTutorial,
			FallbackUsed: true,
		},
	}
	setupTestServices(t, query, nil, nil)

	out, err := execute(t, "query", "-c", "docs", "any tutorials?")

	require.NoError(t, err)
	assert.Contains(t, out, "results are unfiltered")
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	query := &mockQueryService{
		result: &domain.QueryResult{
			Answer:        "answer",
			AppliedFilter: &domain.Filter{Key: "kind", Value: "class"},
		},
	}
	setupTestServices(t, query, nil, nil)

	out, err := execute(t, "query", "-c", "docs", "--json", "q")

	require.NoError(t, err)
	assert.Contains(t, out, `"answer": "answer"`)
	assert.Contains(t, out, `"kind"`)
}
