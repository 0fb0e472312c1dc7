package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarch/scholarch-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/scholarch/scholarch-cli/internal/core/domain"
)

func indexedStore(t *testing.T, chunks []domain.Chunk) *memory.VectorStore {
	t.Helper()
	store := memory.New()
	_, err := NewIndexService(store, &mockEmbedder{}).
		Build(context.Background(), chunks, domain.BuildOptions{Collection: "docs"})
	require.NoError(t, err)
	return store
}

func structuralCorpus() []domain.Chunk {
	return []domain.Chunk{
		{ID: "p", Text: "PlannerA grows a tree through the state space", Source: "classPlannerA.html", Title: "PlannerA", Kind: domain.KindClass, Symbol: "PlannerA", ChunkIndex: 0},
		{ID: "t", Text: "Tutorial1 walks through a first planning problem", Source: "tutorial1.html", Title: "Tutorial1", Kind: domain.KindTutorial, ChunkIndex: 0},
	}
}

// TestInferKind tests keyword-driven kind inference
func TestInferKind(t *testing.T) {
	tests := []struct {
		question string
		want     domain.DocKind
	}{
		{"show me a tutorial for setup", domain.KindTutorial},
		{"give me an example", domain.KindTutorial},
		{"what is in the ompl::base namespace", domain.KindNamespace},
		{"how does the RRT planner work", domain.KindClass},
		{"which class implements PRM", domain.KindClass},
		{"what algorithm does it use", domain.KindClass},
		{"which function sets the goal", domain.KindFunction},
		{"what method should I call", domain.KindFunction},
		{"is there an api for this", domain.KindFunction},
		{"which file defines the state space", domain.KindFile},
		{"tell me about sampling strategies", ""},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, InferKind(tt.question))
		})
	}
}

// TestAsk_AutoFilter tests the structural end-to-end path: auto-filter
// restricts results to the inferred kind
func TestAsk_AutoFilter(t *testing.T) {
	store := indexedStore(t, structuralCorpus())
	svc := NewQueryService(store, &mockEmbedder{}, &mockLLM{})

	result, err := svc.Ask(context.Background(), "show me the PlannerA class", domain.QueryOptions{
		Collection: "docs",
		AutoFilter: true,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.KindClass, result.InferredKind)
	require.NotNil(t, result.AppliedFilter)
	assert.Equal(t, "kind", result.AppliedFilter.Key)
	assert.Equal(t, "class", result.AppliedFilter.Value)
	assert.False(t, result.FallbackUsed)

	require.NotEmpty(t, result.Context)
	foundPlanner := false
	for _, c := range result.Context {
		assert.Equal(t, "class", c.Metadata["kind"], "only class chunks pass the filter")
		if c.ID == "p" {
			foundPlanner = true
		}
	}
	assert.True(t, foundPlanner)
	assert.Equal(t, "mock answer", result.Answer)
}

// TestAsk_FailoverOnEmptyFilter tests the failover property: when the
// inferred filter matches nothing, the unfiltered retry serves results
func TestAsk_FailoverOnEmptyFilter(t *testing.T) {
	// Corpus has no tutorial chunks, so a tutorial question's filter
	// matches zero results.
	store := indexedStore(t, []domain.Chunk{
		{ID: "p", Text: "PlannerA documentation body", Source: "classPlannerA.html", Kind: domain.KindClass},
	})
	svc := NewQueryService(store, &mockEmbedder{}, &mockLLM{})

	result, err := svc.Ask(context.Background(), "is there a tutorial for PlannerA", domain.QueryOptions{
		Collection: "docs",
		AutoFilter: true,
	})
	require.NoError(t, err)

	assert.True(t, result.FallbackUsed)
	assert.Nil(t, result.AppliedFilter, "the filter was removed by failover")
	assert.Equal(t, domain.KindTutorial, result.InferredKind, "the attempted filter stays recorded")
	assert.NotEmpty(t, result.Context)
}

// TestRetrieve_ExplicitFilterWins tests that an explicit filter
// suppresses auto-filtering
func TestRetrieve_ExplicitFilterWins(t *testing.T) {
	store := indexedStore(t, structuralCorpus())
	svc := NewQueryService(store, &mockEmbedder{}, nil)

	result, err := svc.Retrieve(context.Background(), "show me the PlannerA class", domain.QueryOptions{
		Collection: "docs",
		AutoFilter: true,
		Filter:     &domain.Filter{Key: "kind", Value: "tutorial"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.InferredKind)
	require.NotNil(t, result.AppliedFilter)
	assert.Equal(t, "tutorial", result.AppliedFilter.Value)
	for _, c := range result.Context {
		assert.Equal(t, "tutorial", c.Metadata["kind"])
	}
}

// TestRetrieve_NoContext tests the empty-after-failover error
func TestRetrieve_NoContext(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.EnsureCollection(context.Background(), "empty", "mock-embed"))
	svc := NewQueryService(store, &mockEmbedder{}, nil)

	_, err := svc.Retrieve(context.Background(), "anything at all", domain.QueryOptions{Collection: "empty"})
	assert.ErrorIs(t, err, domain.ErrNoContext)
}

// TestRetrieve_EmbedFailure tests stage attribution for embedding
// errors
func TestRetrieve_EmbedFailure(t *testing.T) {
	store := indexedStore(t, structuralCorpus())
	svc := NewQueryService(store, &mockEmbedder{embedErr: fmt.Errorf("connection refused")}, nil)

	_, err := svc.Retrieve(context.Background(), "anything", domain.QueryOptions{Collection: "docs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed question")
}

// TestAsk_GenerateFailure tests stage attribution for generation
// errors
func TestAsk_GenerateFailure(t *testing.T) {
	store := indexedStore(t, structuralCorpus())
	svc := NewQueryService(store, &mockEmbedder{}, &mockLLM{generateErr: fmt.Errorf("model not loaded")})

	_, err := svc.Ask(context.Background(), "anything about planners", domain.QueryOptions{Collection: "docs"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate answer")
}

// TestAsk_PromptAssembly tests that instructions, context and question
// all reach the model
func TestAsk_PromptAssembly(t *testing.T) {
	store := indexedStore(t, structuralCorpus())
	llm := &mockLLM{}
	svc := NewQueryService(store, &mockEmbedder{}, llm)

	_, err := svc.Ask(context.Background(), "how does PlannerA work", domain.QueryOptions{
		Collection:   "docs",
		Instructions: "Answer like a reviewer.",
	})
	require.NoError(t, err)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Answer like a reviewer.")
	assert.Contains(t, prompt, "Context:")
	assert.Contains(t, prompt, "Question:\nhow does PlannerA work")
}

// TestAsk_DefaultInstructions tests the bilingual default preamble
func TestAsk_DefaultInstructions(t *testing.T) {
	store := indexedStore(t, structuralCorpus())
	llm := &mockLLM{}
	svc := NewQueryService(store, &mockEmbedder{}, llm)

	_, err := svc.Ask(context.Background(), "how does PlannerA work", domain.QueryOptions{Collection: "docs"})
	require.NoError(t, err)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Japanese translation")
}

// TestFormatContext tests the context block layout
func TestFormatContext(t *testing.T) {
	chunks := []domain.RetrievedChunk{
		{
			Text: "planner body",
			Metadata: map[string]any{
				"source":      "classPlannerA.html",
				"title":       "PlannerA",
				"chunk_index": 2,
			},
		},
		{
			Text: "survey body",
			Metadata: map[string]any{
				"source":        "survey.pdf",
				"paper_title":   "A Survey",
				"section_title": "Methods",
				"chunk_index":   float64(0),
				"page_start":    int64(4),
			},
		},
	}

	got := FormatContext(chunks)
	assert.Contains(t, got, "[1] PlannerA (classPlannerA.html, chunk 2)\nplanner body")
	assert.Contains(t, got, "[2] A Survey / Methods (survey.pdf, chunk 0, page 4)\nsurvey body")
}

// TestFormatContext_UnknownMetadata tests the fallback labels
func TestFormatContext_UnknownMetadata(t *testing.T) {
	got := FormatContext([]domain.RetrievedChunk{{Text: "body", Metadata: map[string]any{}}})
	assert.Equal(t, "[1] unknown (unknown)\nbody", got)
}

// TestRetrieve_Validation tests input validation
func TestRetrieve_Validation(t *testing.T) {
	svc := NewQueryService(memory.New(), &mockEmbedder{}, nil)

	_, err := svc.Retrieve(context.Background(), "  ", domain.QueryOptions{Collection: "docs"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Retrieve(context.Background(), "question", domain.QueryOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
